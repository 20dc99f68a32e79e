package train

import "github.com/Dhruvin6677/ai-buddy/pkg/response"

var (
	ErrInvalidPNR = response.NewError(400, "pnr must be a 10 digit number")
)
