package domain

import (
	"encoding/json"
	"time"
)

// PageSize is the fixed page size of the asset API's paginated collections.
const PageSize = 10

// AssetStatus is the lifecycle status the asset API reports for a piece of equipment.
type AssetStatus string

const (
	AssetAvailable   AssetStatus = "AVAILABLE"
	AssetInUse       AssetStatus = "IN_USE"
	AssetMaintenance AssetStatus = "MAINTENANCE"
	AssetRetired     AssetStatus = "RETIRED"
)

// Asset is one tracked piece of equipment.
type Asset struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Category       int64           `json:"category"`
	Status         AssetStatus     `json:"status"`
	Department     int64           `json:"department"`
	PurchaseDate   string          `json:"purchase_date"`
	Value          float64         `json:"value"`
	Specifications json.RawMessage `json:"specifications,omitempty"`
	Location       string          `json:"location"`
}

// AssetInput is a create or partial-update payload. Nil fields are omitted.
type AssetInput struct {
	Name           *string         `json:"name,omitempty"`
	Category       *int64          `json:"category,omitempty"`
	Status         *AssetStatus    `json:"status,omitempty"`
	Department     *int64          `json:"department,omitempty"`
	PurchaseDate   *string         `json:"purchase_date,omitempty"`
	Value          *float64        `json:"value,omitempty"`
	Specifications json.RawMessage `json:"specifications,omitempty"`
	Location       *string         `json:"location,omitempty"`
}

// AssetFilter carries the asset list query.
type AssetFilter struct {
	Page       int
	Search     string
	Status     string
	Category   string
	Department string
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AssetRequest is a user's request to be assigned an asset.
type AssetRequest struct {
	ID          int64     `json:"id"`
	Asset       int64     `json:"asset"`
	RequestedBy int64     `json:"requested_by"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Page is one page of a paginated collection.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// TotalPages derives the page count from Count and PageSize.
func (p Page[T]) TotalPages() int {
	if p.Count <= 0 {
		return 1
	}
	return (p.Count + PageSize - 1) / PageSize
}

type AssetMetrics struct {
	Total           int     `json:"total"`
	Available       int     `json:"available"`
	Assigned        int     `json:"assigned"`
	UtilizationRate float64 `json:"utilization_rate"`
}

type MaintenanceMetrics struct {
	TotalInMaintenance int     `json:"total_in_maintenance"`
	AvgCost            float64 `json:"avg_cost"`
	TotalCost          float64 `json:"total_cost"`
}

type LifecycleMetrics struct {
	AvgAgeDays float64 `json:"avg_age_days"`
	TotalValue float64 `json:"total_value"`
}

type RequestMetrics struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	Approved     int     `json:"approved"`
	ApprovalRate float64 `json:"approval_rate"`
}

// DashboardMetrics is the payload of GET /reports/metrics/dashboard/.
// A payload without an assets block is treated as invalid.
type DashboardMetrics struct {
	Assets      *AssetMetrics      `json:"assets"`
	Maintenance MaintenanceMetrics `json:"maintenance"`
	Lifecycle   LifecycleMetrics   `json:"lifecycle"`
	Requests    RequestMetrics     `json:"requests"`
}
