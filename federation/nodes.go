package federation

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/util"
)

const authorPullPageSize = 50

// NodeService registers and deactivates federation peers. Registration
// triggers a bulk pull of the peer's author directory so fan-out knows its
// recipients before any activity arrives.
type NodeService struct {
	Nodes    NodeRepo
	Resolver *Resolver
	Client   *http.Client
}

// RegisterNode stores the peer and pulls its author directory. A failed pull
// does not undo the registration; authors fill in lazily from later
// deliveries instead.
func (s *NodeService) RegisterNode(n *domain.Node) error {
	host := util.BaseHost(util.NormalizeURL(n.Host))
	if host == "" || !util.IsValidURL(host) {
		return fmt.Errorf("invalid node host %q", n.Host)
	}
	n.Host = host
	if n.Id == uuid.Nil {
		n.Id = uuid.New()
	}

	if err := s.Nodes.CreateNode(n); err != nil {
		return err
	}
	log.Printf("Node: registered %s", n.Host)

	if err := s.pullAuthors(n); err != nil {
		log.Printf("Node: author pull from %s failed: %v", n.Host, err)
	}
	return nil
}

// DeactivateNode stops future traffic with the peer. Cached authors and
// entries stay.
func (s *NodeService) DeactivateNode(id uuid.UUID) error {
	return s.Nodes.SetNodeActive(id, false)
}

func (s *NodeService) pullAuthors(n *domain.Node) error {
	pulled := 0
	for page := 1; ; page++ {
		authors, err := s.fetchAuthorPage(n, page)
		if err != nil {
			return err
		}
		for _, ref := range authors {
			if _, rerr := s.Resolver.ResolveAuthor(ref); rerr != nil {
				log.Printf("Node: skipping author %q from %s: %v", ref.Id, n.Host, rerr)
			} else {
				pulled++
			}
		}
		if len(authors) < authorPullPageSize {
			break
		}
	}
	log.Printf("Node: pulled %d authors from %s", pulled, n.Host)
	return nil
}

func (s *NodeService) fetchAuthorPage(n *domain.Node, page int) ([]domain.ActorRef, error) {
	url := fmt.Sprintf("%s?page=%d&size=%d", util.JoinURL(n.Host, "/api/authors/"), page, authorPullPageSize)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(n.Username, n.Password)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}

	var directory struct {
		Type  string            `json:"type"`
		Items []domain.ActorRef `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&directory); err != nil {
		return nil, err
	}
	return directory.Items, nil
}
