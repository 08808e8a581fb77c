package clients

import "cockpityara/internal/domain/project"

type AddClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

type UpdateClientRequest struct {
	Name           *string         `json:"name"`
	Phone          *string         `json:"phone"`
	Status         *project.Status `json:"status"`
	EstimatedValue *float64        `json:"valor_estimado"`
}
