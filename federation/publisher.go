package federation

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/util"
)

// Publisher pushes local activities to remote inboxes through a bounded pool
// of workers. Every push is best-effort: a failed delivery is logged and
// dropped, and never rolls back the local write that triggered it.
type Publisher struct {
	Authors AuthorRepo
	Nodes   NodeRepo
	Inbox   InboxRepo

	client  *http.Client
	jobs    chan pushJob
	workers int
	wg      sync.WaitGroup
}

type pushJob struct {
	recipient domain.Author
	payload   []byte
	entryURL  string
	done      *sync.WaitGroup
}

func NewPublisher(authors AuthorRepo, nodes NodeRepo, inbox InboxRepo, timeout time.Duration, workers int) *Publisher {
	if workers < 1 {
		workers = 1
	}
	return &Publisher{
		Authors: authors,
		Nodes:   nodes,
		Inbox:   inbox,
		client:  &http.Client{Timeout: timeout},
		jobs:    make(chan pushJob, workers*4),
		workers: workers,
	}
}

// Start spawns the delivery workers.
func (p *Publisher) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.push(job)
			}
		}()
	}
	log.Printf("Publisher: started %d delivery workers", p.workers)
}

// Stop drains the queue and waits for the workers to finish.
func (p *Publisher) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// PublishEntry fans an entry activity out to every known remote author and
// blocks until all deliveries finished or timed out.
func (p *Publisher) PublishEntry(entry *domain.Entry, author *domain.Author) {
	payload := canonicalJSON(NewEntryPayload(entry, author))

	err, recipients := p.Authors.ReadRemoteAuthors()
	if err != nil {
		log.Printf("Publisher: listing remote authors failed: %v", err)
		return
	}

	var done sync.WaitGroup
	for _, recipient := range *recipients {
		done.Add(1)
		p.jobs <- pushJob{recipient: recipient, payload: payload, entryURL: entry.URL, done: &done}
	}
	done.Wait()
}

// PublishFollow pushes a follow request to the followed author's inbox.
func (p *Publisher) PublishFollow(actor, object *domain.Author) {
	p.publishTo(object, canonicalJSON(NewFollowPayload(actor, object)))
}

// PublishFollowResponse pushes an accept or reject back to the follower.
func (p *Publisher) PublishFollowResponse(follower, followed *domain.Author, responseType string) {
	p.publishTo(follower, canonicalJSON(NewFollowResponsePayload(follower, followed, responseType)))
}

// PublishLike pushes a like to the liked object's author.
func (p *Publisher) PublishLike(like *domain.Like, author, recipient *domain.Author) {
	p.publishTo(recipient, canonicalJSON(NewLikePayload(like, author)))
}

// PublishComment pushes a comment to the entry's author.
func (p *Publisher) PublishComment(comment *domain.Comment, author, recipient *domain.Author) {
	p.publishTo(recipient, canonicalJSON(NewCommentPayload(comment, author)))
}

// PublishUndoLike pushes a like retraction to the liked object's author.
func (p *Publisher) PublishUndoLike(like *domain.Like, actor, recipient *domain.Author) {
	p.publishTo(recipient, canonicalJSON(NewUndoLikePayload(like, actor)))
}

// PublishUndoFollow pushes an unfollow to the followed author's inbox.
func (p *Publisher) PublishUndoFollow(actor, object *domain.Author) {
	p.publishTo(object, canonicalJSON(NewUndoFollowPayload(actor, object)))
}

func (p *Publisher) publishTo(recipient *domain.Author, payload []byte) {
	if recipient == nil || recipient.IsLocal() {
		return
	}
	var done sync.WaitGroup
	done.Add(1)
	p.jobs <- pushJob{recipient: *recipient, payload: payload, done: &done}
	done.Wait()
}

func (p *Publisher) push(job pushJob) {
	defer job.done.Done()

	err := p.deliver(&job.recipient, job.payload)
	if err != nil {
		log.Printf("Publisher: delivery to %s failed: %v", job.recipient.URL, err)
	}
	if job.entryURL != "" {
		audit := &domain.InboxDelivery{
			Id:           uuid.New(),
			EntryURL:     job.entryURL,
			RecipientURL: job.recipient.URL,
			Success:      err == nil,
		}
		if aerr := p.Inbox.CreateInboxDelivery(audit); aerr != nil {
			log.Printf("Publisher: recording delivery for %s failed: %v", job.recipient.URL, aerr)
		}
	}
}

func (p *Publisher) deliver(recipient *domain.Author, payload []byte) error {
	if recipient.NodeId == nil {
		return fmt.Errorf("no home node for %s", recipient.URL)
	}
	err, node := p.Nodes.ReadNodeById(*recipient.NodeId)
	if err != nil {
		return fmt.Errorf("home node lookup: %w", err)
	}
	if !node.IsActive {
		return fmt.Errorf("node %s is inactive", node.Host)
	}

	inboxURL := util.JoinURL(recipient.URL, "/inbox/")
	req, err := http.NewRequest(http.MethodPost, inboxURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(node.Username, node.Password)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("inbox %s returned %d", inboxURL, resp.StatusCode)
	}
	return nil
}
