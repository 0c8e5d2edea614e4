package domain

import (
	"fmt"
	"github.com/google/uuid"
	"time"
)

// Author is an identity record. URL is the canonical identifier across the
// whole federation and doubles as the join key for every relation; remote
// authors carry the id of their home node, local authors carry none.
type Author struct {
	Id           uuid.UUID
	URL          string
	Username     string
	DisplayName  string
	ProfileImage string
	Host         string
	Web          string
	NodeId       *uuid.UUID // nil for local authors
	IsOperator   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLocal reports whether the author belongs to this instance.
func (a *Author) IsLocal() bool {
	return a.NodeId == nil
}

// IsRemote reports whether the author was cached from a federated peer.
func (a *Author) IsRemote() bool {
	return a.NodeId != nil
}

func (a *Author) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tURL: %s \n\tUsername: %s \n\tCreatedAt: %s)", a.Id, a.URL, a.Username, a.CreatedAt)
}

// Node is a remote peer this instance exchanges activities with. Credentials
// are a shared-secret basic auth pair. Deactivating a node stops future
// federation traffic but keeps everything already cached from it.
type Node struct {
	Id        uuid.UUID
	Name      string
	Host      string
	Username  string
	Password  string
	IsActive  bool
	CreatedAt time.Time
}

func (n *Node) ToString() string {
	return fmt.Sprintf("%s (%s)", n.Name, n.Host)
}
