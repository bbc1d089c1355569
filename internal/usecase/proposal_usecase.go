package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/domain/pricing"
	"clearing_proposals/internal/domain/token"
	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/infrastructure/metrics"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxFullNameLen = 200

	// maxTransitionAttempts bounds re-reads after a write lost to a
	// concurrent change of the same record.
	maxTransitionAttempts = 3
)

// ITokenManager is satisfied by *token.Manager.
type ITokenManager interface {
	Issue(proposalID string, documentVersion int, ttl time.Duration) (token.Issued, error)
	VerifyFor(raw, proposalID string) (token.Claims, error)
}

// ISnapshotStore is the part of the catalog the orchestrator needs.
type ISnapshotStore interface {
	CreateSnapshot(ctx context.Context, templateID string) (entities.ProposalSnapshot, error)
	GetSnapshot(ctx context.Context, templateID string, version int) (entities.ProposalSnapshot, error)
}

//go:generate mockgen -destination=../adapter/http/handlers/mocks/mock_proposal_usecase.go -package=mocks clearing_proposals/internal/usecase IProposalUseCase

// IProposalUseCase drives the proposal lifecycle:
//
//	Generate  -> draft
//	Send      draft -> sent
//	View      sent -> viewed (idempotent)
//	Accept    sent|viewed -> accepted (single use token)
//	Checkout  accepted, deposit > 0 -> payment session
//	MarkPaid  accepted -> paid
//	Expire    sent|viewed -> expired
type IProposalUseCase interface {
	Generate(ctx context.Context, cmd GenerateCommand) (GenerateResult, error)
	Send(ctx context.Context, proposalID, sentBy string) (SendResult, error)
	View(ctx context.Context, proposalID, rawToken string) (entities.Proposal, error)
	Accept(ctx context.Context, cmd AcceptCommand) (AcceptResult, error)
	Checkout(ctx context.Context, proposalID, rawToken string) (interfaces.CheckoutSession, error)
	MarkPaid(ctx context.Context, cmd MarkPaidCommand) (entities.Proposal, error)
	Expire(ctx context.Context, proposalID string) (entities.Proposal, error)
	GetByID(ctx context.Context, id string) (entities.Proposal, error)
	ListEvents(ctx context.Context, proposalID string) ([]entities.ProposalEvent, error)
}

type GenerateCommand struct {
	TemplateID string
	Customer   entities.Customer
	Inputs     entities.ProposalInputs
	LeadID     string
	CreatedBy  string
}

type GenerateResult struct {
	Proposal     entities.Proposal
	PDFSignedURL string
}

type SendResult struct {
	Proposal   entities.Proposal
	EmailID    string
	ApproveURL string
}

type AcceptCommand struct {
	ProposalID string
	Token      string
	FullName   string
	Consent    bool
	IP         string
	UserAgent  string
}

type AcceptResult struct {
	Proposal        entities.Proposal
	DepositRequired bool
	DepositAmount   float64
	PaymentURL      string
}

type MarkPaidCommand struct {
	ProposalID        string
	ProviderPaymentID string
	Amount            float64
}

// ProposalSettings are the environment-derived knobs of the orchestrator.
type ProposalSettings struct {
	PublicBaseURL string
	TokenTTL      time.Duration
	PDFURLTTL     time.Duration
	Currency      string
	CompanyName   string
}

// ProposalDependencies groups the collaborators injected at startup.
type ProposalDependencies struct {
	Repo        interfaces.IProposalRepository
	Snapshots   ISnapshotStore
	Tokens      ITokenManager
	Renderer    interfaces.IPDFRenderer
	Assets      interfaces.IAssetStore
	Mailer      interfaces.IMailer
	Gateway     interfaces.IPaymentGateway
	PaymentRepo interfaces.IPaymentRepository
	Logger      *zap.Logger
	Now         func() time.Time
}

type ProposalUseCase struct {
	repo        interfaces.IProposalRepository
	snapshots   ISnapshotStore
	tokens      ITokenManager
	renderer    interfaces.IPDFRenderer
	assets      interfaces.IAssetStore
	mailer      interfaces.IMailer
	gateway     interfaces.IPaymentGateway
	paymentRepo interfaces.IPaymentRepository
	settings    ProposalSettings
	logger      *zap.Logger
	now         func() time.Time
}

var _ IProposalUseCase = (*ProposalUseCase)(nil)

func NewProposalUseCase(deps ProposalDependencies, settings ProposalSettings) *ProposalUseCase {
	if settings.TokenTTL <= 0 {
		settings.TokenTTL = token.DefaultTTL
	}
	if settings.PDFURLTTL <= 0 {
		settings.PDFURLTTL = 7 * 24 * time.Hour
	}
	if settings.Currency == "" {
		settings.Currency = "USD"
	}
	settings.PublicBaseURL = strings.TrimRight(settings.PublicBaseURL, "/")
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ProposalUseCase{
		repo:        deps.Repo,
		snapshots:   deps.Snapshots,
		tokens:      deps.Tokens,
		renderer:    deps.Renderer,
		assets:      deps.Assets,
		mailer:      deps.Mailer,
		gateway:     deps.Gateway,
		paymentRepo: deps.PaymentRepo,
		settings:    settings,
		logger:      logger.OrNop(deps.Logger),
		now:         now,
	}
}

func (u *ProposalUseCase) Generate(ctx context.Context, cmd GenerateCommand) (GenerateResult, error) {
	cmd.TemplateID = strings.TrimSpace(cmd.TemplateID)
	if cmd.TemplateID == "" {
		return GenerateResult{}, invalidField("template_id", "required")
	}
	customer, err := normalizeCustomer(cmd.Customer)
	if err != nil {
		return GenerateResult{}, err
	}
	inputs, err := normalizeInputs(cmd.Inputs)
	if err != nil {
		return GenerateResult{}, err
	}

	snap, err := u.snapshots.CreateSnapshot(ctx, cmd.TemplateID)
	if err != nil {
		return GenerateResult{}, err
	}
	if inputs.PackageID != "" {
		if _, ok := pricing.LookupPackage(inputs.PackageID, snap.Packages); !ok {
			return GenerateResult{}, invalidField("package_id", "unknown package "+inputs.PackageID)
		}
	}
	totals := pricing.ComputeTotals(inputs, snap.Packages, snap.Services)

	now := u.now().UTC()
	p := entities.Proposal{
		ID:              uuid.NewString(),
		LeadID:          strings.TrimSpace(cmd.LeadID),
		Customer:        customer,
		Inputs:          inputs,
		Computed:        totals,
		SnapshotRef:     snap.Ref(),
		Status:          entities.ProposalStatusDraft,
		DocumentVersion: 1,
		CreatedBy:       strings.TrimSpace(cmd.CreatedBy),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	ev := u.newEvent(p.ID, entities.EventProposalGenerated, map[string]string{
		"template_id": snap.TemplateID,
		"version":     strconv.Itoa(snap.Version),
		"total":       formatAmount(totals.Total),
		"deposit":     formatAmount(totals.DepositAmount),
		"created_by":  p.CreatedBy,
	})
	err = u.repo.Create(ctx, p, ev)
	u.record(ev.Type, err)
	if err != nil {
		u.logger.Error("[proposal][usecase] create failed", zap.String("proposal_id", p.ID), zap.Error(err))
		return GenerateResult{}, err
	}
	u.logger.Info("[proposal][usecase] generated",
		zap.String("proposal_id", p.ID), zap.String("template_id", snap.TemplateID),
		zap.Int("snapshot_version", snap.Version), zap.Float64("total", totals.Total))

	stored, signedURL := u.renderAndStore(ctx, p, snap)
	return GenerateResult{Proposal: stored, PDFSignedURL: signedURL}, nil
}

// renderAndStore renders the PDF, uploads it and records the asset on the
// draft. Failures are logged and recorded as events; the draft stays valid.
func (u *ProposalUseCase) renderAndStore(ctx context.Context, p entities.Proposal, snap entities.ProposalSnapshot) (entities.Proposal, string) {
	if u.renderer == nil || u.assets == nil {
		return p, ""
	}
	pdf, err := u.renderPDF(ctx, p, snap)
	if err != nil {
		u.sideEffectFailed(ctx, p.ID, entities.EventProposalPDFFailed, "render", err)
		return p, ""
	}
	key := fmt.Sprintf("proposals/%s/v%d.pdf", p.ID, p.DocumentVersion)
	start := time.Now()
	_, err = u.assets.Upload(ctx, key, pdf, "application/pdf")
	metrics.DependencyCalls.WithLabelValues("storage_upload", metrics.Outcome(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		u.sideEffectFailed(ctx, p.ID, entities.EventProposalPDFFailed, "upload", err)
		return p, ""
	}
	signedURL, err := u.assets.SignedURL(ctx, key, u.settings.PDFURLTTL)
	if err != nil {
		u.logger.Warn("[proposal][usecase] signed url failed", zap.String("proposal_id", p.ID), zap.Error(err))
	}

	next := p
	next.Assets.PDFPath = key
	next.Assets.PDFVersion = p.DocumentVersion
	next.Assets.SignedPDFURL = signedURL
	next.UpdatedAt = u.now().UTC()
	ev := u.newEvent(p.ID, entities.EventProposalPDFRendered, map[string]string{
		"pdf_path": key,
		"bytes":    strconv.Itoa(len(pdf)),
	})
	stored, err := u.repo.Transition(ctx, next, interfaces.TransitionCondition{
		FromStatuses: []entities.ProposalStatus{entities.ProposalStatusDraft},
	}, ev)
	u.record(ev.Type, err)
	if err != nil {
		u.logger.Warn("[proposal][usecase] asset record failed", zap.String("proposal_id", p.ID), zap.Error(err))
		return p, signedURL
	}
	return stored, signedURL
}

func (u *ProposalUseCase) renderPDF(ctx context.Context, p entities.Proposal, snap entities.ProposalSnapshot) ([]byte, error) {
	start := time.Now()
	pdf, err := u.renderer.Render(ctx, interfaces.ProposalDocument{Proposal: p, Snapshot: snap})
	metrics.DependencyCalls.WithLabelValues("pdf_render", metrics.Outcome(err)).Observe(time.Since(start).Seconds())
	return pdf, err
}

// Send issues the approval token, emails the customer and commits draft -> sent.
//
// The email goes out before the commit: if delivery fails nothing is stored and
// the admin can retry. If the commit fails after delivery, the emailed token
// does not match any stored hash and can never be accepted.
func (u *ProposalUseCase) Send(ctx context.Context, proposalID, sentBy string) (SendResult, error) {
	p, err := u.GetByID(ctx, proposalID)
	if err != nil {
		return SendResult{}, err
	}
	if p.Status != entities.ProposalStatusDraft {
		u.logger.Info("[proposal][usecase] send rejected", zap.String("proposal_id", p.ID), zap.String("status", string(p.Status)))
		return SendResult{}, ErrInvalidTransition
	}

	issued, err := u.tokens.Issue(p.ID, p.DocumentVersion, u.settings.TokenTTL)
	if err != nil {
		return SendResult{}, err
	}
	approveURL := u.approveURL(p.ID, issued.Token)

	emailID, err := u.sendProposalEmail(ctx, p, approveURL, issued.ExpiresAt)
	if err != nil {
		u.sideEffectFailed(ctx, p.ID, entities.EventProposalEmailFailed, "email", err)
		return SendResult{}, dependencyError("email", err)
	}

	now := u.now().UTC()
	next := p
	next.Status = entities.ProposalStatusSent
	next.Tokens = entities.ProposalTokens{
		ApproveTokenHash: token.HashUniqueID(issued.UniqueID),
		ExpiresAt:        issued.ExpiresAt,
		IsUsed:           false,
	}
	next.Assets.WebURL = u.settings.PublicBaseURL + "/proposals/" + p.ID
	next.Audit.SentAt = &now
	next.Audit.SentBy = strings.TrimSpace(sentBy)
	next.UpdatedAt = now

	ev := u.newEvent(p.ID, entities.EventProposalSent, map[string]string{
		"sent_by":          next.Audit.SentBy,
		"email_id":         emailID,
		"token_expires_at": issued.ExpiresAt.Format(time.RFC3339),
		"document_version": strconv.Itoa(p.DocumentVersion),
	})
	stored, err := u.repo.Transition(ctx, next, interfaces.TransitionCondition{
		FromStatuses: []entities.ProposalStatus{entities.ProposalStatusDraft},
	}, ev)
	u.record(ev.Type, err)
	if errors.Is(err, interfaces.ErrConditionFailed) {
		return SendResult{}, ErrInvalidTransition
	}
	if err != nil {
		u.logger.Error("[proposal][usecase] send commit failed", zap.String("proposal_id", p.ID), zap.Error(err))
		return SendResult{}, err
	}
	u.logger.Info("[proposal][usecase] sent", zap.String("proposal_id", p.ID), zap.String("email_id", emailID))
	return SendResult{Proposal: stored, EmailID: emailID, ApproveURL: approveURL}, nil
}

func (u *ProposalUseCase) sendProposalEmail(ctx context.Context, p entities.Proposal, approveURL string, expiresAt time.Time) (string, error) {
	if u.mailer == nil {
		return "", errors.New("mailer not configured")
	}
	var attachments []interfaces.Attachment
	if u.renderer != nil {
		snap, err := u.snapshots.GetSnapshot(ctx, p.SnapshotRef.TemplateID, p.SnapshotRef.Version)
		if err == nil {
			pdf, rerr := u.renderPDF(ctx, p, snap)
			if rerr == nil {
				attachments = append(attachments, interfaces.Attachment{
					Filename:    fmt.Sprintf("proposal-%s.pdf", shortID(p.ID)),
					ContentType: "application/pdf",
					Data:        pdf,
				})
			} else {
				u.logger.Warn("[proposal][usecase] attachment render failed; sending link only", zap.String("proposal_id", p.ID), zap.Error(rerr))
			}
		} else {
			u.logger.Warn("[proposal][usecase] snapshot load failed; sending link only", zap.String("proposal_id", p.ID), zap.Error(err))
		}
	}

	subject, html, text := proposalEmail(u.settings.CompanyName, p, approveURL, u.settings.Currency, expiresAt)
	start := time.Now()
	id, err := u.mailer.Send(ctx, interfaces.Email{
		To:          p.Customer.Email,
		Subject:     subject,
		HTML:        html,
		Text:        text,
		Attachments: attachments,
	})
	metrics.DependencyCalls.WithLabelValues("email", metrics.Outcome(err)).Observe(time.Since(start).Seconds())
	return id, err
}

// View marks a sent proposal as viewed. Calling it on a viewed (or later)
// proposal returns the record unchanged and writes no event.
func (u *ProposalUseCase) View(ctx context.Context, proposalID, rawToken string) (entities.Proposal, error) {
	p, _, err := u.authorize(ctx, proposalID, rawToken)
	if err != nil {
		return entities.Proposal{}, err
	}
	if p.Status != entities.ProposalStatusSent {
		return p, nil
	}

	now := u.now().UTC()
	next := p
	next.Status = entities.ProposalStatusViewed
	next.Audit.ViewedAt = &now
	next.UpdatedAt = now
	ev := u.newEvent(p.ID, entities.EventProposalViewed, nil)
	stored, err := u.repo.Transition(ctx, next, interfaces.TransitionCondition{
		FromStatuses: []entities.ProposalStatus{entities.ProposalStatusSent},
	}, ev)
	u.record(ev.Type, err)
	if errors.Is(err, interfaces.ErrConditionFailed) {
		return u.GetByID(ctx, p.ID)
	}
	if err != nil {
		return entities.Proposal{}, err
	}
	return stored, nil
}

func (u *ProposalUseCase) Accept(ctx context.Context, cmd AcceptCommand) (AcceptResult, error) {
	fullName := strings.TrimSpace(cmd.FullName)
	if fullName == "" {
		return AcceptResult{}, invalidField("full_name", "required")
	}
	if utf8.RuneCountInString(fullName) > maxFullNameLen {
		return AcceptResult{}, invalidField("full_name", "too long")
	}
	if !cmd.Consent {
		return AcceptResult{}, invalidField("consent", "must be true")
	}

	var stored entities.Proposal
	for attempt := 1; ; attempt++ {
		p, hash, err := u.authorize(ctx, cmd.ProposalID, cmd.Token)
		if err != nil {
			return AcceptResult{}, err
		}
		if p.Tokens.IsUsed {
			return AcceptResult{}, ErrTokenAlreadyUsed
		}
		if p.Status != entities.ProposalStatusSent && p.Status != entities.ProposalStatusViewed {
			return AcceptResult{}, ErrNotAvailableForAcceptance
		}

		now := u.now().UTC()
		next := p
		next.Status = entities.ProposalStatusAccepted
		next.Tokens.IsUsed = true
		next.Audit.AcceptedAt = &now
		next.Audit.AcceptedByName = fullName
		next.Audit.IP = strings.TrimSpace(cmd.IP)
		next.Audit.UserAgent = truncate(strings.TrimSpace(cmd.UserAgent), 512)
		next.UpdatedAt = now

		ev := u.newEvent(p.ID, entities.EventProposalAccepted, map[string]string{
			"accepted_by_name": fullName,
			"ip":               next.Audit.IP,
			"user_agent":       next.Audit.UserAgent,
			"deposit_amount":   formatAmount(p.Computed.DepositAmount),
		})
		stored, err = u.repo.Transition(ctx, next, interfaces.TransitionCondition{
			FromStatuses: []entities.ProposalStatus{entities.ProposalStatusSent, entities.ProposalStatusViewed},
			TokenUnused:  true,
			TokenHash:    hash,
		}, ev)
		u.record(ev.Type, err)
		if errors.Is(err, interfaces.ErrConditionFailed) {
			retry, cerr := u.classifyAcceptConflict(ctx, p.ID)
			if retry && attempt < maxTransitionAttempts {
				continue
			}
			if cerr == nil {
				cerr = ErrNotAvailableForAcceptance
			}
			return AcceptResult{}, cerr
		}
		if err != nil {
			u.logger.Error("[proposal][usecase] accept commit failed", zap.String("proposal_id", p.ID), zap.Error(err))
			return AcceptResult{}, err
		}
		break
	}
	u.logger.Info("[proposal][usecase] accepted", zap.String("proposal_id", stored.ID), zap.Float64("deposit", stored.Computed.DepositAmount))

	res := AcceptResult{
		Proposal:        stored,
		DepositRequired: stored.DepositRequired(),
		DepositAmount:   stored.Computed.DepositAmount,
	}
	if res.DepositRequired {
		session, withCheckout, err := u.startCheckout(ctx, stored)
		if err != nil {
			u.logger.Warn("[proposal][usecase] checkout after accept failed; client may retry checkout",
				zap.String("proposal_id", stored.ID), zap.Error(err))
		} else {
			res.Proposal = withCheckout
			res.PaymentURL = session.URL
		}
	}
	return res, nil
}

// classifyAcceptConflict reloads the record after a lost accept write. A
// record that is still open for acceptance lost to a concurrent write such as
// a view, and the accept is retried against the fresh record.
func (u *ProposalUseCase) classifyAcceptConflict(ctx context.Context, proposalID string) (bool, error) {
	current, err := u.GetByID(ctx, proposalID)
	if err != nil {
		return false, err
	}
	if current.Tokens.IsUsed {
		return false, ErrTokenAlreadyUsed
	}
	if current.Status == entities.ProposalStatusSent || current.Status == entities.ProposalStatusViewed {
		return true, nil
	}
	return false, ErrNotAvailableForAcceptance
}

// Checkout opens (or returns the already opened) hosted payment session for
// the deposit of an accepted proposal.
func (u *ProposalUseCase) Checkout(ctx context.Context, proposalID, rawToken string) (interfaces.CheckoutSession, error) {
	p, _, err := u.authorize(ctx, proposalID, rawToken)
	if err != nil {
		return interfaces.CheckoutSession{}, err
	}
	switch {
	case p.Status == entities.ProposalStatusPaid:
		return interfaces.CheckoutSession{}, ErrAlreadyPaid
	case p.Status != entities.ProposalStatusAccepted:
		return interfaces.CheckoutSession{}, ErrNotAccepted
	case !p.DepositRequired():
		return interfaces.CheckoutSession{}, ErrNoDepositRequired
	}
	if p.Checkout.SessionID != "" && p.Checkout.CheckoutURL != "" {
		return interfaces.CheckoutSession{SessionID: p.Checkout.SessionID, URL: p.Checkout.CheckoutURL}, nil
	}
	session, _, err := u.startCheckout(ctx, p)
	return session, err
}

func (u *ProposalUseCase) startCheckout(ctx context.Context, p entities.Proposal) (interfaces.CheckoutSession, entities.Proposal, error) {
	if u.gateway == nil {
		return interfaces.CheckoutSession{}, p, dependencyError("payments", errors.New("gateway not configured"))
	}
	req := interfaces.CheckoutRequest{
		ProposalID:    p.ID,
		AmountCents:   int64(math.Round(p.Computed.DepositAmount * 100)),
		Currency:      u.settings.Currency,
		Title:         "Deposit for proposal " + shortID(p.ID),
		CustomerName:  p.Customer.Name,
		CustomerEmail: p.Customer.Email,
		SuccessURL:    u.settings.PublicBaseURL + "/proposals/" + p.ID + "/paid",
		CancelURL:     u.settings.PublicBaseURL + "/proposals/" + p.ID,
	}
	start := time.Now()
	session, err := u.gateway.CreateCheckoutSession(ctx, req)
	metrics.DependencyCalls.WithLabelValues("payments_checkout", metrics.Outcome(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		u.sideEffectFailed(ctx, p.ID, entities.EventProposalCheckoutFailed, "payments", err)
		return interfaces.CheckoutSession{}, p, dependencyError("payments", err)
	}

	now := u.now().UTC()
	next := p
	next.Checkout.SessionID = session.SessionID
	next.Checkout.CheckoutURL = session.URL
	next.UpdatedAt = now
	ev := u.newEvent(p.ID, entities.EventProposalCheckoutStart, map[string]string{
		"session_id":   session.SessionID,
		"amount_cents": strconv.FormatInt(req.AmountCents, 10),
	})
	stored, err := u.repo.Transition(ctx, next, interfaces.TransitionCondition{
		FromStatuses: []entities.ProposalStatus{entities.ProposalStatusAccepted},
	}, ev)
	u.record(ev.Type, err)
	if errors.Is(err, interfaces.ErrConditionFailed) {
		current, gerr := u.GetByID(ctx, p.ID)
		switch {
		case gerr != nil:
			return interfaces.CheckoutSession{}, p, gerr
		case current.Status == entities.ProposalStatusPaid:
			return interfaces.CheckoutSession{}, p, ErrAlreadyPaid
		case current.Status == entities.ProposalStatusAccepted && current.Checkout.SessionID != "":
			return interfaces.CheckoutSession{SessionID: current.Checkout.SessionID, URL: current.Checkout.CheckoutURL}, current, nil
		}
		return interfaces.CheckoutSession{}, p, ErrNotAccepted
	}
	if err != nil {
		return interfaces.CheckoutSession{}, p, err
	}

	if u.paymentRepo != nil {
		_, perr := u.paymentRepo.Create(ctx, entities.ProposalPayment{
			ID:         session.SessionID,
			ProposalID: p.ID,
			Amount:     p.Computed.DepositAmount,
			Date:       now,
			Status:     entities.PaymentStatusPending,
		})
		if perr != nil {
			u.logger.Warn("[proposal][usecase] pending payment record failed",
				zap.String("proposal_id", p.ID), zap.String("session_id", session.SessionID), zap.Error(perr))
		}
	}
	u.logger.Info("[proposal][usecase] checkout started", zap.String("proposal_id", p.ID), zap.String("session_id", session.SessionID))
	return session, stored, nil
}

// MarkPaid is driven by a confirmed provider payment. Repeated confirmations
// for a paid proposal are no-ops.
func (u *ProposalUseCase) MarkPaid(ctx context.Context, cmd MarkPaidCommand) (entities.Proposal, error) {
	for attempt := 1; ; attempt++ {
		p, err := u.GetByID(ctx, cmd.ProposalID)
		if err != nil {
			return entities.Proposal{}, err
		}
		if p.Status == entities.ProposalStatusPaid {
			return p, nil
		}
		if p.Status != entities.ProposalStatusAccepted {
			return entities.Proposal{}, ErrInvalidTransition
		}
		if cmd.Amount+0.005 < p.Computed.DepositAmount {
			return entities.Proposal{}, invalidField("amount", "payment below deposit amount")
		}

		now := u.now().UTC()
		next := p
		next.Status = entities.ProposalStatusPaid
		next.Audit.PaidAt = &now
		next.Checkout.ProviderPaymentID = strings.TrimSpace(cmd.ProviderPaymentID)
		next.UpdatedAt = now
		ev := u.newEvent(p.ID, entities.EventProposalPaid, map[string]string{
			"provider_payment_id": next.Checkout.ProviderPaymentID,
			"amount":              formatAmount(cmd.Amount),
		})
		stored, err := u.repo.Transition(ctx, next, interfaces.TransitionCondition{
			FromStatuses: []entities.ProposalStatus{entities.ProposalStatusAccepted},
		}, ev)
		u.record(ev.Type, err)
		if errors.Is(err, interfaces.ErrConditionFailed) {
			if attempt < maxTransitionAttempts {
				continue
			}
			return entities.Proposal{}, ErrInvalidTransition
		}
		if err != nil {
			return entities.Proposal{}, err
		}
		u.logger.Info("[proposal][usecase] paid", zap.String("proposal_id", p.ID), zap.String("provider_payment_id", next.Checkout.ProviderPaymentID))
		return stored, nil
	}
}

// Expire closes a sent or viewed proposal whose approval token has lapsed.
func (u *ProposalUseCase) Expire(ctx context.Context, proposalID string) (entities.Proposal, error) {
	for attempt := 1; ; attempt++ {
		p, err := u.GetByID(ctx, proposalID)
		if err != nil {
			return entities.Proposal{}, err
		}
		if !p.Status.CanTransition(entities.ProposalStatusExpired) {
			return entities.Proposal{}, ErrInvalidTransition
		}
		now := u.now().UTC()
		if !now.After(p.Tokens.ExpiresAt) {
			return entities.Proposal{}, ErrNotExpired
		}

		next := p
		next.Status = entities.ProposalStatusExpired
		next.UpdatedAt = now
		ev := u.newEvent(p.ID, entities.EventProposalExpired, map[string]string{
			"token_expires_at": p.Tokens.ExpiresAt.Format(time.RFC3339),
		})
		stored, err := u.repo.Transition(ctx, next, interfaces.TransitionCondition{
			FromStatuses: []entities.ProposalStatus{entities.ProposalStatusSent, entities.ProposalStatusViewed},
			TokenUnused:  true,
		}, ev)
		u.record(ev.Type, err)
		if errors.Is(err, interfaces.ErrConditionFailed) {
			if attempt < maxTransitionAttempts {
				continue
			}
			return entities.Proposal{}, ErrInvalidTransition
		}
		return stored, err
	}
}

func (u *ProposalUseCase) GetByID(ctx context.Context, id string) (entities.Proposal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Proposal{}, ErrInvalidProposalID
	}
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Proposal{}, err
	}
	if p.ID == "" {
		return entities.Proposal{}, ErrProposalNotFound
	}
	return p, nil
}

func (u *ProposalUseCase) ListEvents(ctx context.Context, proposalID string) ([]entities.ProposalEvent, error) {
	if _, err := u.GetByID(ctx, proposalID); err != nil {
		return nil, err
	}
	return u.repo.ListEvents(ctx, strings.TrimSpace(proposalID))
}

// authorize verifies a public token against the proposal it claims to open.
// Signature, expiry, binding, version and stored-hash failures are all
// reported as ErrTokenInvalid.
func (u *ProposalUseCase) authorize(ctx context.Context, proposalID, rawToken string) (entities.Proposal, string, error) {
	proposalID = strings.TrimSpace(proposalID)
	claims, err := u.tokens.VerifyFor(rawToken, proposalID)
	if err != nil {
		metrics.TokenVerifications.WithLabelValues("invalid").Inc()
		return entities.Proposal{}, "", ErrTokenInvalid
	}
	p, err := u.repo.GetByID(ctx, proposalID)
	if err != nil {
		return entities.Proposal{}, "", err
	}
	hash := token.HashUniqueID(claims.UniqueID)
	if p.ID == "" ||
		claims.DocumentVersion != p.DocumentVersion ||
		subtle.ConstantTimeCompare([]byte(hash), []byte(p.Tokens.ApproveTokenHash)) != 1 {
		metrics.TokenVerifications.WithLabelValues("unbound").Inc()
		return entities.Proposal{}, "", ErrTokenInvalid
	}
	metrics.TokenVerifications.WithLabelValues("valid").Inc()
	return p, hash, nil
}

func (u *ProposalUseCase) sideEffectFailed(ctx context.Context, proposalID string, evType entities.ProposalEventType, dep string, cause error) {
	u.logger.Error("[proposal][usecase] side effect failed",
		zap.String("proposal_id", proposalID), zap.String("dependency", dep), zap.Error(cause))
	ev := u.newEvent(proposalID, evType, map[string]string{"dependency": dep, "error": truncate(cause.Error(), 256)})
	if err := u.repo.AppendEvent(ctx, ev); err != nil {
		u.logger.Error("[proposal][usecase] failure event not recorded", zap.String("proposal_id", proposalID), zap.Error(err))
	}
}

func (u *ProposalUseCase) newEvent(proposalID string, t entities.ProposalEventType, metadata map[string]string) entities.ProposalEvent {
	ts := u.now().UTC()
	return entities.ProposalEvent{
		ID:         ts.Format("2006-01-02T15:04:05.000000000Z") + "#" + uuid.NewString()[:8],
		ProposalID: proposalID,
		Type:       t,
		Timestamp:  ts,
		Metadata:   metadata,
	}
}

func (u *ProposalUseCase) record(t entities.ProposalEventType, err error) {
	metrics.ProposalTransitions.WithLabelValues(string(t), metrics.Outcome(err)).Inc()
}

func (u *ProposalUseCase) approveURL(proposalID, rawToken string) string {
	return u.settings.PublicBaseURL + "/proposals/" + proposalID + "/approve?token=" + rawToken
}

func normalizeCustomer(c entities.Customer) (entities.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" {
		return c, invalidField("customer.name", "required")
	}
	addr, err := mail.ParseAddress(c.Email)
	if err != nil || addr.Address != c.Email {
		return c, invalidField("customer.email", "must be a valid address")
	}
	return c, nil
}

func normalizeInputs(in entities.ProposalInputs) (entities.ProposalInputs, error) {
	in.PackageID = strings.TrimSpace(in.PackageID)
	in.Address = strings.TrimSpace(in.Address)
	if math.IsNaN(in.Acreage) || math.IsInf(in.Acreage, 0) || in.Acreage <= 0 {
		return in, invalidField("inputs.acreage", "must be positive")
	}
	if in.DistanceMiles < 0 || math.IsNaN(in.DistanceMiles) {
		return in, invalidField("inputs.distance_miles", "must not be negative")
	}
	if in.Address == "" {
		return in, invalidField("inputs.address", "required")
	}
	in.SelectedServiceIDs = append([]string(nil), in.SelectedServiceIDs...)
	in.Obstacles = append([]string(nil), in.Obstacles...)
	return in, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate caps s at n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
