// Package service hosts the outbound-notification dispatcher. Email is
// delivered off the request path: handlers enqueue a job and return
// immediately, a fixed pool of workers drains the queue. The queue is
// bounded, so a burst of notifications can drop mail but can never pile
// up unbounded goroutines or block a request.
package service

import (
	"fmt"
	"log"
	"sync"

	"github.com/spikeside/team-manager/internal/mailer"
	"github.com/spikeside/team-manager/internal/model"
)

// Sender delivers one email. Satisfied by *mailer.Mailer; tests swap in
// a fake.
type Sender interface {
	Send(mailer.Email) error
}

// Notifier owns the job queue and worker pool.
type Notifier struct {
	sender  Sender
	baseURL string
	jobs    chan mailer.Email
	wg      sync.WaitGroup

	mu      sync.Mutex
	dropped uint64
}

// NewNotifier builds a Notifier with the given pool size and queue
// capacity and starts its workers.
func NewNotifier(sender Sender, workers, queueSize int, baseURL string) *Notifier {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	n := &Notifier{
		sender:  sender,
		baseURL: baseURL,
		jobs:    make(chan mailer.Email, queueSize),
	}
	n.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go n.worker()
	}
	return n
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for job := range n.jobs {
		if err := n.sender.Send(job); err != nil {
			// No retry: delivery is best-effort by contract.
			log.Printf("notifier: send to %v failed: %v", job.To, err)
		}
	}
}

// enqueue hands a job to the pool without ever blocking the caller. On
// a full queue the job is dropped and counted.
func (n *Notifier) enqueue(job mailer.Email) {
	select {
	case n.jobs <- job:
	default:
		n.mu.Lock()
		n.dropped++
		n.mu.Unlock()
		log.Printf("notifier: queue full, dropping mail to %v", job.To)
	}
}

// Dropped reports how many jobs have been discarded on a full queue.
func (n *Notifier) Dropped() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropped
}

// Close stops accepting work and waits for in-flight deliveries.
func (n *Notifier) Close() {
	close(n.jobs)
	n.wg.Wait()
}

// SendPasswordReset enqueues the reset email carrying the raw token
// link. Never blocks.
func (n *Notifier) SendPasswordReset(user model.User, token string) {
	link := fmt.Sprintf("%s/reset-password/%s", n.baseURL, token)
	n.enqueue(mailer.Email{
		To:      []string{user.Email},
		Subject: "[Team Manager] Reset Your Password",
		Body: fmt.Sprintf(
			"Hi %s,\n\nTo reset your password, visit the following link:\n\n%s\n\n"+
				"The link is valid for 24 hours. If you did not request a password reset, ignore this email.\n",
			user.FirstName, link),
		HTMLBody: fmt.Sprintf(
			`<p>Hi %s,</p><p>To reset your password, <a href="%s">click here</a>.</p>`+
				`<p>The link is valid for 24 hours. If you did not request a password reset, ignore this email.</p>`,
			user.FirstName, link),
	})
}

// SendTeamInvite enqueues a notification that the user was added to a
// team. Never blocks.
func (n *Notifier) SendTeamInvite(user model.User, team model.Team, memberRole string) {
	n.enqueue(mailer.Email{
		To:      []string{user.Email},
		Subject: fmt.Sprintf("[Team Manager] You joined %s", team.Name),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYou have been added to team %s as %s.\n\nSee you on the court!\n",
			user.FirstName, team.Name, memberRole),
	})
}
