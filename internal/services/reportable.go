package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/mrskaggs/forkful/backend/internal/repositories"
	"gorm.io/gorm"
)

// Reportable resolves a piece of reportable content: who owns it, and
// whether it exists. One implementation per content kind replaces a switch
// on content type scattered through the report path.
type Reportable interface {
	ResolveOwner(ctx context.Context, contentID string) (uint, error)
	Exists(ctx context.Context, contentID string) (bool, error)
}

type commentReportable struct {
	comments repositories.CommentRepository
}

func (r *commentReportable) lookup(contentID string) (uint, bool, error) {
	id, err := strconv.ParseUint(contentID, 10, 32)
	if err != nil {
		return 0, false, nil
	}
	comment, err := r.comments.GetCommentByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return comment.AuthorID, true, nil
}

func (r *commentReportable) ResolveOwner(_ context.Context, contentID string) (uint, error) {
	owner, _, err := r.lookup(contentID)
	return owner, err
}

func (r *commentReportable) Exists(_ context.Context, contentID string) (bool, error) {
	_, ok, err := r.lookup(contentID)
	return ok, err
}

type chatMessageReportable struct {
	messages repositories.ChatMessageRepository
}

func (r *chatMessageReportable) lookup(contentID string) (uint, bool, error) {
	id, err := uuid.Parse(contentID)
	if err != nil {
		return 0, false, nil
	}
	message, err := r.messages.GetChatMessageByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return message.UserID, true, nil
}

func (r *chatMessageReportable) ResolveOwner(_ context.Context, contentID string) (uint, error) {
	owner, _, err := r.lookup(contentID)
	return owner, err
}

func (r *chatMessageReportable) Exists(_ context.Context, contentID string) (bool, error) {
	_, ok, err := r.lookup(contentID)
	return ok, err
}

// profileReportable treats the content ID as the reported user ID itself.
type profileReportable struct{}

func (profileReportable) ResolveOwner(_ context.Context, contentID string) (uint, error) {
	id, err := strconv.ParseUint(contentID, 10, 32)
	if err != nil {
		return 0, nil
	}
	return uint(id), nil
}

func (profileReportable) Exists(_ context.Context, contentID string) (bool, error) {
	_, err := strconv.ParseUint(contentID, 10, 32)
	return err == nil, nil
}

// otherReportable treats the content ID as opaque: existence is forced true
// and no owner can be derived.
type otherReportable struct{}

func (otherReportable) ResolveOwner(_ context.Context, _ string) (uint, error) { return 0, nil }

func (otherReportable) Exists(_ context.Context, _ string) (bool, error) { return true, nil }
