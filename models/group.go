package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// StudentGroup is a roster of students taught together.
type StudentGroup struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Students []string           `json:"students" bson:"students"`
}

type CreateGroupRequest struct {
	Name     string   `json:"name" binding:"required"`
	Students []string `json:"students"`
}
