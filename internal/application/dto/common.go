package dto

// DateLayout formato de fechas en requests y responses.
const DateLayout = "2006-01-02"

// PageRequest paginación para listados.
type PageRequest struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

// DefaultPage aplica valores por defecto (20 por página, máximo 100).
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = 20
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
}

// Offset desplazamiento equivalente a la página.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP. Line indica la línea del carrito que falló (1-based).
type ErrorResponse struct {
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}
