package domain

// Client is a record from the client directory. Fields keeps every raw
// directory column so callers can reach rarely used attributes without
// widening the struct.
type Client struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Address         string            `json:"address"`
	AllowedSections []string          `json:"allowedSections"`
	Fields          map[string]string `json:"fields"`
}
