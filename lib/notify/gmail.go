package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	pkgerrors "github.com/pkg/errors"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fserrors"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GmailScope is the scope needed to send messages
const GmailScope = gmail.GmailSendScope

// GmailSender sends messages as the authorised user
type GmailSender struct {
	svc *gmail.Service
}

// NewGmailSender makes a GmailSender using client which should be
// authorised with GmailScope. endpoint overrides the API location if
// set.
func NewGmailSender(ctx context.Context, client *http.Client, endpoint string) (*GmailSender, error) {
	options := []option.ClientOption{option.WithHTTPClient(client)}
	if endpoint != "" {
		options = append(options, option.WithEndpoint(endpoint))
	}
	svc, err := gmail.NewService(ctx, options...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "couldn't create Gmail client")
	}
	return &GmailSender{svc: svc}, nil
}

// Send sends msg. It isn't retried so that a message is never
// delivered twice.
func (s *GmailSender) Send(ctx context.Context, msg *Message) (string, error) {
	raw, err := msg.Bytes()
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to encode message")
	}
	sent, err := s.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			err = fserrors.NewStatusError(gerr.Code, err)
		}
		return "", pkgerrors.Wrapf(err, "failed to send message to %q", msg.To)
	}
	fs.Infof(nil, "Sent message to %q, id %s", msg.To, sent.Id)
	return sent.Id, nil
}

// Check the interfaces are satisfied
var _ Sender = (*GmailSender)(nil)
