package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	appconfig "clearing_proposals/internal/config"
	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

var ErrMissingSender = errors.New("missing EMAIL_FROM")

type sesAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESMailer delivers proposal emails through Amazon SES. Raw messages are used
// so the PDF can travel as an attachment.
type SESMailer struct {
	client sesAPI
	from   string
	logger *zap.Logger
}

var _ interfaces.IMailer = (*SESMailer)(nil)

func NewSESMailer(awsCfg aws.Config, settings appconfig.AWSConfig, from string, l *zap.Logger) (*SESMailer, error) {
	if from == "" {
		return nil, ErrMissingSender
	}
	client := ses.NewFromConfig(awsCfg, func(o *ses.Options) {
		if settings.SESEndpoint != "" {
			o.BaseEndpoint = aws.String(settings.SESEndpoint)
		}
	})
	return &SESMailer{client: client, from: from, logger: logger.OrNop(l)}, nil
}

func (m *SESMailer) Send(ctx context.Context, e interfaces.Email) (string, error) {
	raw, err := buildMessage(m.from, e, time.Now())
	if err != nil {
		return "", err
	}
	out, err := m.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(m.from),
		Destinations: []string{e.To},
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		m.logger.Error("[email][ses] send failed", zap.String("to", e.To), zap.Error(err))
		return "", fmt.Errorf("ses send: %w", err)
	}
	id := aws.ToString(out.MessageId)
	m.logger.Info("[email][ses] sent", zap.String("to", e.To), zap.String("message_id", id))
	return id, nil
}

// buildMessage renders a multipart/mixed message with a multipart/alternative
// body and base64 attachments.
func buildMessage(from string, e interfaces.Email, now time.Time) ([]byte, error) {
	if strings.ContainsAny(e.To, "\r\n") || strings.ContainsAny(e.Subject, "\r\n") {
		return nil, errors.New("header injection in email")
	}

	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", e.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", e.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	var alt bytes.Buffer
	altWriter := multipart.NewWriter(&alt)
	if e.Text != "" {
		if err := writePart(altWriter, "text/plain; charset=utf-8", nil, []byte(e.Text)); err != nil {
			return nil, err
		}
	}
	if e.HTML != "" {
		if err := writePart(altWriter, "text/html; charset=utf-8", nil, []byte(e.HTML)); err != nil {
			return nil, err
		}
	}
	if err := altWriter.Close(); err != nil {
		return nil, err
	}

	altHeader := textproto.MIMEHeader{}
	altHeader.Set("Content-Type", "multipart/alternative; boundary="+altWriter.Boundary())
	altPart, err := mixed.CreatePart(altHeader)
	if err != nil {
		return nil, err
	}
	if _, err := altPart.Write(alt.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range e.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		extra := map[string]string{
			"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}),
		}
		if err := writePart(mixed, ct, extra, a.Data); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(w *multipart.Writer, contentType string, extra map[string]string, data []byte) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "base64")
	for k, v := range extra {
		h.Set(k, v)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		if _, err := part.Write([]byte(enc[:76] + "\r\n")); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err = part.Write([]byte(enc + "\r\n"))
	return err
}
