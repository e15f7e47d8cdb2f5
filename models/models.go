package models

import (
	"time"

	"github.com/Luiz-altf4/Rose-Forum/internal/vote"
)

const DefaultCategory = "outro"

type Post struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Category  string     `json:"category"`
	Tags      []string   `json:"tags"`
	Date      time.Time  `json:"date"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	Views     int        `json:"views"`
	Likes     int        `json:"likes"`
	vote.Tally
	Author string `json:"author"`
}

// Comment is stored flat; the thread is rebuilt from ParentID.
type Comment struct {
	ID       string    `json:"id"`
	PostID   string    `json:"postId"`
	ParentID *string   `json:"parentId"`
	Content  string    `json:"content"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	vote.Tally
}

type Identity struct {
	Name     string    `json:"name"`
	Avatar   *string   `json:"avatar"`
	JoinDate time.Time `json:"joinDate"`
}

type Friend struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Since    time.Time `json:"since"`
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

type FriendRequest struct {
	ID     string        `json:"id"`
	From   string        `json:"from"`
	To     string        `json:"to"`
	Status RequestStatus `json:"status"`
	Date   time.Time     `json:"date"`
}

type ChatMessage struct {
	ID   string    `json:"id"`
	With string    `json:"with"`
	From string    `json:"from"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// Draft mirrors the post form; Tags keeps the raw comma separated input.
type Draft struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Category string    `json:"category"`
	Tags     string    `json:"tags"`
	SavedAt  time.Time `json:"savedAt"`
}

// Document is the row used by SQL backed stores.
type Document struct {
	Key       string `gorm:"primary_key;type:varchar(255)"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}
