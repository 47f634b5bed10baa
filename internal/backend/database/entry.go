package database

type Entry struct {
	ID   int64  `json:"id" db:"id"`
	Date string `json:"date" db:"date"`
	Text string `json:"text" db:"text"`
}
