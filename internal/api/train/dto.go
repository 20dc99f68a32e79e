package train

import "github.com/Dhruvin6677/ai-buddy/internal/entity"

type PNRStatusResponse struct {
	Success     bool               `json:"success"`
	Data        entity.TrainStatus `json:"data"`
	SourceLayer string             `json:"source_layer,omitempty"`
	Message     string             `json:"message"`
}
