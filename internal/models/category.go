package models

// Category groups products.
type Category struct {
	ID   string `json:"_id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

type CategoryInput struct {
	Name string `json:"name"`
}
