// Package dto defines request payloads for the HTTP API.
package dto

import "time"

// ContractCreateRequest is the payload for POST /v1/contracts.
type ContractCreateRequest struct {
	CarID     int64     `json:"car_id" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// ContractCancelRequest carries the cancellation reason.
type ContractCancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}
