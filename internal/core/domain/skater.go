package domain

// Skater is an account record. JSON names follow the public API, which
// predates this service and keeps its Spanish field names.
type Skater struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"nombre"`
	PasswordHash    string `json:"-"`
	YearsExperience int    `json:"anos_experiencia"`
	Specialty       string `json:"especialidad"`
	Photo           string `json:"foto"`
	Active          bool   `json:"estado"`
	// Admin is true when an active administrator record exists for the skater.
	// Only populated by lookups that join the administrators table.
	Admin bool `json:"admin"`
}

// Claims is the identity carried by a session credential.
type Claims struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

// ClaimsFor builds the credential identity of a skater.
func ClaimsFor(s *Skater) Claims {
	return Claims{ID: s.ID, Name: s.Name, Email: s.Email, Admin: s.Admin}
}
