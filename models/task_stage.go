package models

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskDone       TaskStatus = "Done"
)

// Fixed production stages, in the order they are worked.
const (
	StageCutting   = "Cutting"
	StageStitching = "Stitching"
	StageHandwork  = "Handwork"
	StagePackaging = "Packaging"
)

// TaskStage is one production step of an Order.
type TaskStage struct {
	ID           string     `bson:"id" json:"id"`
	OrderID      string     `bson:"orderId" json:"orderId"`
	CustomerID   string     `bson:"customerId" json:"customerId"`
	CustomerName string     `bson:"customerName" json:"customerName"`
	StageName    string     `bson:"stageName" json:"stageName"`
	Status       TaskStatus `bson:"status" json:"status"`
	Custom       bool       `bson:"custom,omitempty" json:"custom,omitempty"` // added by hand by the tailor
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
