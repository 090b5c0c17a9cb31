package types

// Model describes one entry of the model catalog.
type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	MaxTokens     int    `json:"maxTokens,omitempty"`
	SupportsTools bool   `json:"supportsTools,omitempty"`
}

// Catalog is an explicit, injected model catalog. Functions needing
// role-to-model defaults take a Catalog value instead of consulting shared
// mutable state, which keeps default lookups deterministic.
type Catalog struct {
	Models []Model `json:"models"`
	// RoleDefaults maps an agent role (e.g. "chat", "title") to a model ID.
	RoleDefaults map[string]string `json:"roleDefaults,omitempty"`
	// Fallback is used when a role has no explicit default.
	Fallback string `json:"fallback,omitempty"`
}

// DefaultFor resolves the model ID for a role.
func (c Catalog) DefaultFor(role string) string {
	if id, ok := c.RoleDefaults[role]; ok && id != "" {
		return id
	}
	return c.Fallback
}

// Lookup returns the catalog entry for a model ID.
func (c Catalog) Lookup(id string) (Model, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}
