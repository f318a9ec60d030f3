package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/dovecot-archive/internal/batch"
	"github.com/teemow/dovecot-archive/internal/datespec"
	"github.com/teemow/dovecot-archive/internal/doveadm"
	"github.com/teemow/dovecot-archive/internal/instrumentation"
	"github.com/teemow/dovecot-archive/internal/logging"
	"github.com/teemow/dovecot-archive/internal/mailbox"
)

// ErrPartialFailure is returned by Run when at least one folder failed.
var ErrPartialFailure = errors.New("archive incomplete")

// Mailstore is the subset of doveadm operations a run needs.
// *doveadm.Client implements it.
type Mailstore interface {
	ListMailboxes(ctx context.Context, user, folder string) ([]string, error)
	MailboxExists(ctx context.Context, user, folder string) (bool, error)
	CreateMailbox(ctx context.Context, user, folder string) error
	HasMessages(ctx context.Context, user, folder string, q doveadm.Query) (bool, error)
	Transfer(ctx context.Context, t doveadm.Transfer) error
}

// Archiver runs archive requests against a Mailstore.
type Archiver struct {
	store   Mailstore
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// New creates an Archiver. A nil logger discards output and nil metrics
// record nothing.
func New(store Mailstore, logger *slog.Logger, metrics *instrumentation.Metrics) *Archiver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Archiver{
		store:   store,
		logger:  logging.WithOperation(logger, "archive"),
		metrics: metrics,
	}
}

// Run archives the mail of req older than cutoff.
//
// Every folder plan produces one result in the returned summary, as does
// every requested folder that could not be listed. When the context is
// cancelled the plans not yet started are recorded as errors.
func (a *Archiver) Run(ctx context.Context, req Request, cutoff datespec.Cutoff) (batch.Summary, error) {
	if err := req.Validate(); err != nil {
		return batch.Summary{}, err
	}
	req = req.Normalize()
	start := time.Now()

	ctx, span := instrumentation.StartSpan(ctx, "archive.run",
		instrumentation.NewSpanAttributeBuilder().WithUsers(req.User, req.DstUser).Build()...)
	defer span.End()

	logger := a.logger
	if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	logger.Info("starting archive",
		logging.User(req.User),
		slog.String("dst_user", req.DstUser),
		slog.String("before", cutoff.String()),
		slog.Bool("split_by_year", req.SplitByYear),
		slog.String("mode", req.Mode()),
	)

	folders, results := a.expand(ctx, req)
	plans := Plan(req, folders, cutoff)
	logger.Debug("planned folders", slog.Int("folders", len(folders)), slog.Int("plans", len(plans)))

	results = append(results, batch.Process(ctx, plans, FolderPlan.ID,
		func(ctx context.Context, p FolderPlan) (string, error) {
			return a.processPlan(ctx, req, p)
		})...)

	summary := batch.Summarize(results)
	status := instrumentation.StatusSuccess
	var err error
	if summary.Failed > 0 {
		status = instrumentation.StatusError
		err = fmt.Errorf("%w: %d of %d folders failed", ErrPartialFailure, summary.Failed, summary.Total)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	a.metrics.RecordRun(ctx, status, time.Since(start))

	logger.Info("archive finished",
		logging.Status(status),
		slog.Int("successful", summary.Successful),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Duration(logging.KeyDuration, time.Since(start)),
	)
	return summary, err
}

// expand lists every requested folder with its subfolders. Folders listed
// twice are kept once, and for same-user archives subfolders inside the
// destination root are dropped. A requested folder is always kept. Failed
// listings become error results.
func (a *Archiver) expand(ctx context.Context, req Request) ([]string, []batch.Result) {
	var (
		folders  []string
		failures []batch.Result
		seen     = make(map[string]bool)
	)

	for _, requested := range req.Folders {
		if req.SameUser() && requested != "" && mailbox.IsWithin(requested, req.DstRoot, req.Separator) {
			a.logger.Warn("requested folder is inside the archive root, its archived subfolders are left alone",
				logging.Folder(requested), logging.Destination(req.DstRoot))
		}

		a.logger.Info("getting all subfolders", logging.User(req.User), logging.Folder(requested))
		found, err := a.store.ListMailboxes(ctx, req.User, requested)
		if err != nil {
			a.logger.Error("failed to list folders", logging.Folder(requested), logging.Err(err))
			failures = append(failures, batch.NewErrorResult("list "+mailbox.ListPattern(requested), err))
			continue
		}

		for _, folder := range found {
			if seen[folder] {
				continue
			}
			seen[folder] = true
			if req.SameUser() && folder != requested && mailbox.IsWithin(folder, req.DstRoot, req.Separator) {
				a.logger.Debug("skipping folder inside archive root", logging.Folder(folder))
				continue
			}
			folders = append(folders, folder)
		}
	}

	return folders, failures
}

// processPlan wraps archiveFolder with a span, metrics and outcome logging.
func (a *Archiver) processPlan(ctx context.Context, req Request, p FolderPlan) (string, error) {
	ctx, span := instrumentation.StartSpan(ctx, "archive.folder",
		instrumentation.NewSpanAttributeBuilder().
			WithUsers(req.User, req.DstUser).
			WithFolders(p.Source, p.Destination).
			WithYear(p.Year).
			Build()...)
	defer span.End()

	logger := a.logger.With(logging.Folder(p.Source), logging.Destination(p.Destination))
	start := time.Now()

	msg, err := a.archiveFolder(ctx, logger, req, p)

	status := instrumentation.StatusSuccess
	switch {
	case err == nil:
		logger.Info(msg, logging.Status(status), slog.Duration(logging.KeyDuration, time.Since(start)))
		instrumentation.SetSpanSuccess(span)
	case errors.Is(err, batch.ErrSkipped):
		status = instrumentation.StatusSkipped
		logger.Info("folder skipped", logging.Status(status), slog.String("reason", err.Error()))
		instrumentation.SetSpanSuccess(span)
	default:
		status = instrumentation.StatusError
		logger.Error("failed to archive folder", logging.Status(status), logging.Err(err))
		instrumentation.SetSpanError(span, err)
	}
	span.SetAttributes(attribute.String(instrumentation.SpanAttrStatus, status))
	a.metrics.RecordFolder(ctx, req.Mode(), status, req.User)

	return msg, err
}

// archiveFolder checks for mail in the plan's window, makes sure the
// destination exists and transfers the mail.
func (a *Archiver) archiveFolder(ctx context.Context, logger *slog.Logger, req Request, p FolderPlan) (string, error) {
	if req.SameUser() && p.Source == p.Destination {
		return "", batch.Skip("source and destination are the same folder")
	}

	q := p.Window.Query()

	logger.Debug("checking for mail to process", slog.String("window", q.String()))
	has, err := a.store.HasMessages(ctx, req.User, p.Source, q)
	if err != nil {
		return "", err
	}
	if !has {
		return "", batch.Skip("no mail " + q.String())
	}

	logger.Debug("checking if destination exists", logging.User(req.DstUser))
	exists, err := a.store.MailboxExists(ctx, req.DstUser, p.Destination)
	if err != nil {
		return "", err
	}
	if !exists {
		logger.Info("creating destination folder", logging.User(req.DstUser))
		if err := a.store.CreateMailbox(ctx, req.DstUser, p.Destination); err != nil {
			return "", err
		}
	}

	t := doveadm.Transfer{
		User:      req.User,
		Folder:    p.Source,
		DstUser:   req.DstUser,
		DstFolder: p.Destination,
		Query:     q,
		Copy:      req.Copy,
	}
	if err := a.store.Transfer(ctx, t); err != nil {
		return "", err
	}

	verb := "moved"
	if req.Copy {
		verb = "copied"
	}
	return fmt.Sprintf("%s mail %s", verb, q), nil
}
