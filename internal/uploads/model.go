package uploads

import "time"

// Capacity is the maximum number of upload records retained per account.
const Capacity = 5

// Upload is one entry in an account's bounded upload ledger. StorageKey points
// at the spool and is only meaningful until forwarding completes or fails.
type Upload struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Filename   string    `json:"filename"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"date"`
}
