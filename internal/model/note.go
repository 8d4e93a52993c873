package model

import "time"

// Note is a shared family note. When Encrypted is true the Body holds
// base64 ciphertext produced client-side; Nonce and WrappedKey carry the
// envelope needed by other members to decrypt. The server never inspects
// encrypted content.
type Note struct {
	ID         int64      `json:"id"`
	FamilyID   int64      `json:"family_id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	Encrypted  bool       `json:"encrypted"`
	Nonce      string     `json:"nonce,omitempty"`
	WrappedKey string     `json:"wrapped_key,omitempty"`
	AuthorID   *int64     `json:"author_id"`
	Pinned     bool       `json:"pinned"`
	Priority   string     `json:"priority"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
