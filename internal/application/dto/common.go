package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// Envelope sobre común de todas las respuestas JSON: {success, code?, message?, data?}.
type Envelope struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse detalle de un error de validación por campo.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TransitionRequest body de PATCH sobre ajustes y traslados.
type TransitionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject complete cancel"`
	Reason string `json:"reason" validate:"max=500"`
}
