// Package model defines the guestbook data structures.
package model

import "time"

// Message is a stored guestbook entry. Email is the plaintext address and
// must only ever be serialized in the creation echo; IPAddress and UserAgent
// are write-only request metadata and are never serialized.
type Message struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	WebsiteURL string    `json:"website_url"`
	Content    string    `json:"content"`
	Email      string    `json:"email"`
	IPAddress  string    `json:"-"`
	UserAgent  string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessageListing is the public projection of a message used in listings.
// The plaintext email is replaced by its lowercase-normalized SHA-256 digest.
type MessageListing struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	WebsiteURL string    `json:"website_url"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	EmailHash  string    `json:"email_hash"`
}

// Pagination summarizes a listing page.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// Pages returns ceil(total/limit) for a positive limit.
func Pages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
