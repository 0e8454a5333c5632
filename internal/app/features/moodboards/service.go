// internal/app/features/moodboards/service.go
package moodboards

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/planora/internal/app/policy/boardpolicy"
	"github.com/dalemusser/planora/internal/app/store/audit"
	boardmemberstore "github.com/dalemusser/planora/internal/app/store/boardmembers"
	boardmessagestore "github.com/dalemusser/planora/internal/app/store/boardmessages"
	moodboardstore "github.com/dalemusser/planora/internal/app/store/moodboards"
	userstore "github.com/dalemusser/planora/internal/app/store/users"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/authz"
	"github.com/dalemusser/planora/internal/app/system/htmlsanitize"
	"github.com/dalemusser/planora/internal/app/system/metrics"
	"github.com/dalemusser/planora/internal/app/system/normalize"
	"github.com/dalemusser/planora/internal/app/system/paging"
	"github.com/dalemusser/planora/internal/app/system/txn"
	"github.com/dalemusser/planora/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	// PublicLimit caps the public board listing.
	PublicLimit = 20
	// ViewMessages is how many recent messages a board view carries.
	ViewMessages = 50
	// MaxMessageLen is the longest message text accepted, in runes.
	MaxMessageLen = 2000
)

var (
	errBoardNotFound = apperr.E(apperr.NotFound, "Mood board not found")
	errNoView        = apperr.E(apperr.Forbidden, "You do not have access to this mood board")
	errNoEdit        = apperr.E(apperr.Forbidden, "You do not have permission to edit this mood board")
	errNoDelete      = apperr.E(apperr.Forbidden, "Only the owner can delete this mood board")
	errOwnerRemoval  = apperr.E(apperr.Forbidden, "The owner cannot be removed from the board")
	errAlreadyMember = apperr.E(apperr.Conflict, "User is already a collaborator")
	errNoSuchUser    = apperr.E(apperr.NotFound, "No user found with that email")
	errNotInvited    = apperr.E(apperr.NotFound, "You are not a collaborator on this board")
	errAnswered      = apperr.E(apperr.Conflict, "This invitation has already been answered")
	errStale         = apperr.E(apperr.Conflict, "The mood board was changed by someone else; reload and try again")
)

// Service implements the mood board collaboration model on top of the
// board, membership and message stores.
type Service struct {
	client   *mongo.Client
	boards   *moodboardstore.Store
	members  *boardmemberstore.Store
	messages *boardmessagestore.Store
	users    *userstore.Store
	events   *audit.Store
	log      *zap.Logger
}

// NewService wires a Service over db. client may be nil, in which case
// multi-document writes run without a transaction.
func NewService(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		boards:   moodboardstore.New(db),
		members:  boardmemberstore.New(db),
		messages: boardmessagestore.New(db),
		users:    userstore.New(db),
		events:   audit.New(db),
		log:      logger,
	}
}

// load fetches a board and the caller's access to it.
func (s *Service) load(ctx context.Context, boardID, userID primitive.ObjectID) (models.MoodBoard, boardpolicy.Access, error) {
	b, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.MoodBoard{}, boardpolicy.Access{}, errBoardNotFound
		}
		return models.MoodBoard{}, boardpolicy.Access{}, apperr.Wrap(err, "")
	}
	acc, err := boardpolicy.Load(ctx, s.members, b, userID)
	if err != nil {
		return models.MoodBoard{}, boardpolicy.Access{}, apperr.Wrap(err, "")
	}
	return b, acc, nil
}

// appendMessage reserves the next seq on the board and writes m.
func (s *Service) appendMessage(ctx context.Context, m models.BoardMessage) (models.BoardMessage, error) {
	seq, err := s.boards.NextSeq(ctx, m.BoardID)
	if err != nil {
		return models.BoardMessage{}, err
	}
	m.Seq = seq
	out, err := s.messages.Append(ctx, m)
	if err != nil {
		return models.BoardMessage{}, err
	}
	metrics.BoardMessage(m.Type)
	return out, nil
}

func systemMessage(boardID primitive.ObjectID, text string) models.BoardMessage {
	return models.BoardMessage{
		BoardID:    boardID,
		SenderName: models.SystemSenderName,
		Text:       text,
		Type:       models.MessageSystem,
	}
}

// Create makes a new board owned by actor, together with the owner's
// accepted membership.
func (s *Service) Create(ctx context.Context, actor authz.Actor, b models.MoodBoard) (View, error) {
	b.OwnerID = actor.ID

	var created models.MoodBoard
	err := txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		var err error
		created, err = s.boards.Create(ctx, b)
		if err != nil {
			return err
		}
		_, err = s.members.Insert(ctx, models.Collaborator{
			BoardID: created.ID,
			UserID:  actor.ID,
			Email:   actor.Email,
			Name:    actor.Name,
			Avatar:  actor.Picture,
			Role:    models.RoleOwner,
			Status:  models.StatusAccepted,
		})
		return err
	})
	if err != nil {
		return View{}, apperr.Wrap(err, "")
	}
	return s.view(ctx, created)
}

// ListPublic returns up to PublicLimit public boards, newest first.
func (s *Service) ListPublic(ctx context.Context) ([]models.MoodBoard, error) {
	out, err := s.boards.ListPublic(ctx, PublicLimit)
	if err != nil {
		return nil, apperr.Wrap(err, "")
	}
	return out, nil
}

// ListForUser returns boards actor owns or has accepted an invitation to.
func (s *Service) ListForUser(ctx context.Context, actor authz.Actor) ([]models.MoodBoard, error) {
	ids, err := s.members.BoardIDsForUser(ctx, actor.ID, models.StatusAccepted)
	if err != nil {
		return nil, apperr.Wrap(err, "")
	}
	out, err := s.boards.ListForUser(ctx, actor.ID, ids)
	if err != nil {
		return nil, apperr.Wrap(err, "")
	}
	return out, nil
}

// Get returns the expanded board if actor may view it.
func (s *Service) Get(ctx context.Context, actor authz.Actor, boardID primitive.ObjectID) (View, error) {
	b, acc, err := s.load(ctx, boardID, actor.ID)
	if err != nil {
		return View{}, err
	}
	if !acc.View {
		return View{}, errNoView
	}
	return s.view(ctx, b)
}

// Update changes board content with a compare-and-swap on version. A nil
// version uses the version read for the permission check.
func (s *Service) Update(ctx context.Context, actor authz.Actor, boardID primitive.ObjectID, version *int64, c moodboardstore.Content) (View, error) {
	b, acc, err := s.load(ctx, boardID, actor.ID)
	if err != nil {
		return View{}, err
	}
	if !acc.Edit {
		return View{}, errNoEdit
	}
	if version == nil {
		v := b.Version
		version = &v
	}
	up, err := s.boards.Update(ctx, boardID, version, c)
	switch {
	case err == nil:
	case errors.Is(err, moodboardstore.ErrVersionConflict):
		return View{}, errStale
	case errors.Is(err, mongo.ErrNoDocuments):
		return View{}, errBoardNotFound
	default:
		return View{}, apperr.Wrap(err, "")
	}
	return s.view(ctx, up)
}

// Delete removes the board and cascades its memberships and messages.
// Owner only.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, boardID primitive.ObjectID) (models.MoodBoard, error) {
	b, acc, err := s.load(ctx, boardID, actor.ID)
	if err != nil {
		return models.MoodBoard{}, err
	}
	if !acc.Delete {
		return models.MoodBoard{}, errNoDelete
	}
	err = txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		if _, err := s.boards.Delete(ctx, boardID); err != nil {
			return err
		}
		if _, err := s.members.DeleteByBoard(ctx, boardID); err != nil {
			return err
		}
		_, err := s.messages.DeleteByBoard(ctx, boardID)
		return err
	})
	if err != nil {
		return models.MoodBoard{}, apperr.Wrap(err, "")
	}
	return b, nil
}

// Invite adds a pending collaborator by email and records a system message.
// Both writes commit together where the server supports transactions.
func (s *Service) Invite(ctx context.Context, actor authz.Actor, boardID primitive.ObjectID, email, role string) (View, models.Collaborator, error) {
	email = normalize.Email(email)
	role = normalize.Role(role)
	if role == "" {
		role = models.RoleViewer
	}
	if role != models.RoleEditor && role != models.RoleViewer {
		return View{}, models.Collaborator{}, apperr.E(apperr.Validation, "Role must be one of: editor, viewer.")
	}

	b, acc, err := s.load(ctx, boardID, actor.ID)
	if err != nil {
		return View{}, models.Collaborator{}, err
	}
	if !acc.Edit {
		return View{}, models.Collaborator{}, errNoEdit
	}

	exists, err := s.members.ExistsByEmail(ctx, boardID, email)
	if err != nil {
		return View{}, models.Collaborator{}, apperr.Wrap(err, "")
	}
	if exists {
		return View{}, models.Collaborator{}, errAlreadyMember
	}

	invitee, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return View{}, models.Collaborator{}, errNoSuchUser
		}
		return View{}, models.Collaborator{}, apperr.Wrap(err, "")
	}

	inviter := actor.ID
	var added models.Collaborator
	err = txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		var err error
		added, err = s.members.Insert(ctx, models.Collaborator{
			BoardID:   boardID,
			UserID:    invitee.ID,
			Email:     invitee.Email,
			Name:      invitee.Name,
			Avatar:    invitee.Picture,
			Role:      role,
			Status:    models.StatusPending,
			InvitedBy: &inviter,
		})
		if err != nil {
			return err
		}
		text := fmt.Sprintf("%s invited %s as %s", actor.Name, invitee.Name, role)
		_, err = s.appendMessage(ctx, systemMessage(boardID, text))
		return err
	})
	if err != nil {
		if errors.Is(err, boardmemberstore.ErrDuplicate) {
			return View{}, models.Collaborator{}, errAlreadyMember
		}
		return View{}, models.Collaborator{}, apperr.Wrap(err, "")
	}
	metrics.BoardInvited(role)

	v, err := s.view(ctx, b)
	return v, added, err
}

// Respond lets an invited user accept or decline. Only a pending invitation
// can be answered.
func (s *Service) Respond(ctx context.Context, actor authz.Actor, boardID primitive.ObjectID, status string) (View, error) {
	status = normalize.Status(status)
	if status != models.StatusAccepted && status != models.StatusDeclined {
		return View{}, apperr.E(apperr.Validation, "Status must be one of: accepted, declined.")
	}

	b, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return View{}, errBoardNotFound
		}
		return View{}, apperr.Wrap(err, "")
	}

	m, err := s.members.Get(ctx, boardID, actor.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return View{}, errNotInvited
		}
		return View{}, apperr.Wrap(err, "")
	}
	if m.Status != models.StatusPending {
		return View{}, errAnswered
	}

	name := m.Name
	if name == "" {
		name = actor.Name
	}
	text := name + " joined the board"
	if status == models.StatusDeclined {
		text = name + " declined the invitation"
	}

	err = txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		if err := s.members.UpdateStatus(ctx, boardID, actor.ID, models.StatusPending, status); err != nil {
			return err
		}
		_, err := s.appendMessage(ctx, systemMessage(boardID, text))
		return err
	})
	if err != nil {
		// Lost a race: a removal makes the invite gone, another answer
		// makes it no longer pending.
		if errors.Is(err, mongo.ErrNoDocuments) {
			return View{}, s.raceOutcome(ctx, boardID, actor.ID)
		}
		return View{}, apperr.Wrap(err, "")
	}
	metrics.BoardResponded(status)
	return s.view(ctx, b)
}

// raceOutcome classifies a Respond whose conditional update matched nothing.
func (s *Service) raceOutcome(ctx context.Context, boardID, userID primitive.ObjectID) error {
	if _, err := s.members.Get(ctx, boardID, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errNotInvited
		}
		return apperr.Wrap(err, "")
	}
	return errAnswered
}

// Remove deletes a collaborator by user id. Removing someone who is not a
// collaborator still succeeds and still records the system message. The
// owner's own membership cannot be removed.
func (s *Service) Remove(ctx context.Context, actor authz.Actor, boardID, collaboratorID primitive.ObjectID) (View, error) {
	b, acc, err := s.load(ctx, boardID, actor.ID)
	if err != nil {
		return View{}, err
	}
	if !acc.Edit {
		return View{}, errNoEdit
	}
	if collaboratorID == b.OwnerID {
		return View{}, errOwnerRemoval
	}

	err = txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		if _, err := s.members.Delete(ctx, boardID, collaboratorID); err != nil {
			return err
		}
		_, err := s.appendMessage(ctx, systemMessage(boardID, actor.Name+" removed a collaborator"))
		return err
	})
	if err != nil {
		return View{}, apperr.Wrap(err, "")
	}
	metrics.BoardCollaboratorRemoved()
	return s.view(ctx, b)
}

// PostMessage appends a user message. Any viewer may post. Clients can
// only post text messages; markup is stripped.
func (s *Service) PostMessage(ctx context.Context, actor authz.Actor, boardID primitive.ObjectID, text, msgType string) (models.BoardMessage, error) {
	msgType = strings.ToLower(strings.TrimSpace(msgType))
	if msgType == "" {
		msgType = models.MessageText
	}
	if msgType != models.MessageText {
		return models.BoardMessage{}, apperr.E(apperr.Validation, "Message type must be text.")
	}
	text = strings.TrimSpace(htmlsanitize.StripTags(text))
	if text == "" {
		return models.BoardMessage{}, apperr.E(apperr.Validation, "Message text is required.")
	}
	if len([]rune(text)) > MaxMessageLen {
		return models.BoardMessage{}, apperr.E(apperr.Validation, fmt.Sprintf("Message text must be at most %d characters.", MaxMessageLen))
	}

	_, acc, err := s.load(ctx, boardID, actor.ID)
	if err != nil {
		return models.BoardMessage{}, err
	}
	if !acc.View {
		return models.BoardMessage{}, errNoView
	}

	sender := actor.ID
	m, err := s.appendMessage(ctx, models.BoardMessage{
		BoardID:    boardID,
		SenderID:   &sender,
		SenderName: actor.Name,
		Text:       text,
		Type:       msgType,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.BoardMessage{}, errBoardNotFound
		}
		return models.BoardMessage{}, apperr.Wrap(err, "")
	}
	return m, nil
}

// ListMessages pages through the log in seq order. It fetches one extra row
// to report whether more messages follow.
func (s *Service) ListMessages(ctx context.Context, actor authz.Actor, boardID primitive.ObjectID, after int64, limit int) ([]models.BoardMessage, bool, error) {
	_, acc, err := s.load(ctx, boardID, actor.ID)
	if err != nil {
		return nil, false, err
	}
	if !acc.View {
		return nil, false, errNoView
	}
	rows, err := s.messages.List(ctx, boardID, after, int64(limit)+1)
	if err != nil {
		return nil, false, apperr.Wrap(err, "")
	}
	more := paging.TrimPage(&rows, limit)
	return rows, more, nil
}

// Activity returns the board's recorded collaboration events, newest first.
// Only the owner and editors may read it.
func (s *Service) Activity(ctx context.Context, actor authz.Actor, boardID primitive.ObjectID, limit int) ([]audit.Event, error) {
	_, acc, err := s.load(ctx, boardID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !acc.Edit {
		return nil, errNoView
	}
	events, err := s.events.List(ctx, audit.Filter{BoardID: &boardID, Limit: int64(limit)})
	if err != nil {
		return nil, apperr.Wrap(err, "")
	}
	return events, nil
}
