package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/wavely-app/backend/internal/models"
	"github.com/wavely-app/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Kind identifies a toggleable interaction. Comments reuse the event plumbing
// but have no removal path.
type Kind string

const (
	KindFollow  Kind = "follow"
	KindLike    Kind = "like"
	KindLaugh   Kind = "laugh"
	KindComment Kind = "comment"
)

// State is the resulting side of a toggle transition.
type State string

const (
	StateAdded   State = "added"
	StateRemoved State = "removed"
)

// Event describes a committed interaction handed to the dispatcher.
type Event struct {
	Kind        Kind
	ActorID     uint
	RecipientID uint
	PostID      uint // zero for follow events
}

// EventDispatcher receives events after the triggering transaction committed.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

// ToggleService converts interaction requests into present/absent transitions
// on the relation store, keeping the denormalized counters equal to the row
// counts. Each toggle runs inside one database transaction; a per-tuple mutex
// serializes concurrent toggles of the same (subject, object, kind) so the
// check-then-act sequence never races with itself.
type ToggleService struct {
	relations  repositories.RelationRepository
	dispatcher EventDispatcher
	locks      *xsync.MapOf[string, *sync.Mutex]
	logger     *zap.Logger
}

// NewToggleService creates a new ToggleService
func NewToggleService(relations repositories.RelationRepository, dispatcher EventDispatcher, logger *zap.Logger) *ToggleService {
	return &ToggleService{
		relations:  relations,
		dispatcher: dispatcher,
		locks:      xsync.NewMapOf[string, *sync.Mutex](),
		logger:     logger,
	}
}

// Toggle flips the relation identified by (subject, object, kind) and returns
// the side it landed on. objectID is a user ID for follow and a post ID for
// reactions.
func (s *ToggleService) Toggle(ctx context.Context, subjectID, objectID uint, kind Kind) (State, error) {
	if subjectID == 0 {
		return "", ErrUnauthenticated
	}
	switch kind {
	case KindFollow:
		return s.toggleFollow(ctx, subjectID, objectID)
	case KindLike, KindLaugh:
		return s.toggleReaction(ctx, subjectID, objectID, models.ReactionKind(kind))
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidOperation, kind)
	}
}

func (s *ToggleService) toggleFollow(ctx context.Context, subjectID, targetID uint) (State, error) {
	if subjectID == targetID {
		return "", fmt.Errorf("%w: cannot follow yourself", ErrInvalidOperation)
	}

	unlock := s.lockTuple(fmt.Sprintf("follow:%d:%d", subjectID, targetID))
	defer unlock()

	var state State
	err := s.relations.Transact(ctx, func(tx repositories.RelationTx) error {
		if _, err := tx.GetUser(targetID); err != nil {
			return notFoundOr(err)
		}

		exists, err := tx.FollowExists(subjectID, targetID)
		if err != nil {
			return err
		}

		if exists {
			if err := tx.DeleteFollow(subjectID, targetID); err != nil {
				return err
			}
			if err := tx.AdjustUserCounter(subjectID, repositories.ColumnFollowingCount, -1); err != nil {
				return err
			}
			if err := tx.AdjustUserCounter(targetID, repositories.ColumnFollowerCount, -1); err != nil {
				return err
			}
			state = StateRemoved
			return nil
		}

		if err := tx.CreateFollow(&models.Follow{FollowerID: subjectID, FollowingID: targetID}); err != nil {
			return err
		}
		if err := tx.AdjustUserCounter(subjectID, repositories.ColumnFollowingCount, 1); err != nil {
			return err
		}
		if err := tx.AdjustUserCounter(targetID, repositories.ColumnFollowerCount, 1); err != nil {
			return err
		}
		state = StateAdded
		return nil
	})
	if err != nil {
		return "", s.classify(err)
	}

	if state == StateAdded {
		s.notify(Event{Kind: KindFollow, ActorID: subjectID, RecipientID: targetID})
	}
	return state, nil
}

func (s *ToggleService) toggleReaction(ctx context.Context, subjectID, postID uint, kind models.ReactionKind) (State, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown reaction %q", ErrInvalidOperation, kind)
	}

	column := repositories.ColumnLikeCount
	if kind == models.ReactionLaugh {
		column = repositories.ColumnLaughCount
	}

	unlock := s.lockTuple(fmt.Sprintf("%s:%d:%d", kind, subjectID, postID))
	defer unlock()

	var state State
	var ownerID uint
	err := s.relations.Transact(ctx, func(tx repositories.RelationTx) error {
		post, err := tx.GetPost(postID)
		if err != nil {
			return notFoundOr(err)
		}
		ownerID = post.UserID

		exists, err := tx.ReactionExists(subjectID, postID, kind)
		if err != nil {
			return err
		}

		if exists {
			if err := tx.DeleteReaction(subjectID, postID, kind); err != nil {
				return err
			}
			state = StateRemoved
			return tx.AdjustPostCounter(postID, column, -1)
		}

		if err := tx.CreateReaction(&models.Reaction{PostID: postID, UserID: subjectID, Kind: kind}); err != nil {
			return err
		}
		state = StateAdded
		return tx.AdjustPostCounter(postID, column, 1)
	})
	if err != nil {
		return "", s.classify(err)
	}

	if state == StateAdded {
		s.notify(Event{Kind: Kind(kind), ActorID: subjectID, RecipientID: ownerID, PostID: postID})
	}
	return state, nil
}

// AddComment appends a comment to the post and bumps its comment counter in
// the same transaction. Unlike toggles there is no removal path, and the post
// owner is notified on every comment.
func (s *ToggleService) AddComment(ctx context.Context, subjectID, postID uint, content string) (*models.Comment, error) {
	if subjectID == 0 {
		return nil, ErrUnauthenticated
	}

	comment := &models.Comment{PostID: postID, UserID: subjectID, Content: content}
	var ownerID uint
	err := s.relations.Transact(ctx, func(tx repositories.RelationTx) error {
		post, err := tx.GetPost(postID)
		if err != nil {
			return notFoundOr(err)
		}
		ownerID = post.UserID

		if err := tx.CreateComment(comment); err != nil {
			return err
		}
		return tx.AdjustPostCounter(postID, repositories.ColumnCommentCount, 1)
	})
	if err != nil {
		return nil, s.classify(err)
	}

	s.notify(Event{Kind: KindComment, ActorID: subjectID, RecipientID: ownerID, PostID: postID})
	return comment, nil
}

// lockTuple acquires the per-tuple mutex and returns its release func.
func (s *ToggleService) lockTuple(key string) func() {
	mu, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu.Lock()
	return mu.Unlock
}

// notify hands the event to the dispatcher on its own goroutine; the caller's
// response never waits on notification work.
func (s *ToggleService) notify(event Event) {
	go func() {
		if err := s.dispatcher.Dispatch(context.Background(), event); err != nil {
			s.logger.Warn("notification dispatch failed",
				zap.String("kind", string(event.Kind)),
				zap.Uint("actor_id", event.ActorID),
				zap.Uint("recipient_id", event.RecipientID),
				zap.Error(err))
		}
	}()
}

// classify keeps business errors intact and hides everything else behind
// ErrInternal.
func (s *ToggleService) classify(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidOperation) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrUnauthenticated) {
		return err
	}
	s.logger.Error("relation store failure", zap.Error(err))
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
