package entity

import "time"

type Product struct {
	ID          string    `json:"productId" firestore:"productId" bson:"productId"`
	Title       string    `json:"title" firestore:"title" bson:"title"`
	Description string    `json:"description" firestore:"description" bson:"description"`
	Files       []FileRef `json:"files" firestore:"files" bson:"files"`
	Images      []FileRef `json:"images" firestore:"images" bson:"images"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}
