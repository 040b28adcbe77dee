package envelope

// Page is the paged list shape returned under "data" by list endpoints.
type Page[T any] struct {
	Page         int `json:"page"`
	CountPerPage int `json:"countPerPage"`
	Total        int `json:"total"`
	Items        []T `json:"items"`
}

// DecodePage decodes the envelope's data member as a Page of T.
func DecodePage[T any](e *Envelope) (Page[T], error) {
	var p Page[T]
	if err := e.DecodeData(&p); err != nil {
		return Page[T]{}, err
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	return p, nil
}
