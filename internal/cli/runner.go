package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/ranking"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/internal/scoring"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"
)

// ErrAborted is returned when the operator declines a confirmation prompt.
var ErrAborted = errors.New("aborted by user")

// ErrVerificationFailed is returned when a stored period fails the QA check.
var ErrVerificationFailed = errors.New("ranking verification failed")

// Options are the flags shared by every command.
type Options struct {
	DryRun      bool
	AutoConfirm bool
}

// Runner implements the rankings CLI commands.
type Runner struct {
	rankings    ranking.Service
	rankingRepo repository.RankingRepository
	fileStore   *repository.RankingFileStore
	in          *bufio.Reader
	out         io.Writer
	logger      *logger.Logger
}

// NewRunner creates a Runner reading confirmations from in and printing to out.
func NewRunner(
	rankings ranking.Service,
	rankingRepo repository.RankingRepository,
	fileStore *repository.RankingFileStore,
	in io.Reader,
	out io.Writer,
	log *logger.Logger,
) *Runner {
	return &Runner{
		rankings:    rankings,
		rankingRepo: rankingRepo,
		fileStore:   fileStore,
		in:          bufio.NewReader(in),
		out:         out,
		logger:      log,
	}
}

// BuildParams are the arguments of the build command.
type BuildParams struct {
	Period           string
	AlgorithmVersion string
	PreviewDate      string
	SetCurrent       bool
}

// Build previews the period, asks for confirmation and stores it.
func (r *Runner) Build(ctx context.Context, p BuildParams, opts Options) error {
	period := p.Period
	if period == "" {
		period = ranking.CurrentPeriod(utils.TimeNow())
	}
	previewDate, err := parsePreviewDate(p.PreviewDate)
	if err != nil {
		return err
	}

	preview, err := r.rankings.Preview(ctx, ranking.PreviewRequest{
		Period:           period,
		AlgorithmVersion: p.AlgorithmVersion,
		PreviewDate:      previewDate,
	})
	if err != nil {
		return fmt.Errorf("failed to preview rankings: %w", err)
	}
	r.printPreview(preview, 10)

	if opts.DryRun {
		fmt.Fprintln(r.out, "Dry run: nothing was stored.")
		return nil
	}
	if !preview.Issues.OK() {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, strings.Join(preview.Issues.Errors, "; "))
	}
	if err := r.confirm(fmt.Sprintf("Store rankings for %s?", period), opts); err != nil {
		return err
	}

	result, err := r.rankings.Build(ctx, ranking.BuildRequest{
		Period:           period,
		AlgorithmVersion: p.AlgorithmVersion,
		PreviewDate:      previewDate,
		SetCurrent:       p.SetCurrent,
	})
	if err != nil {
		return fmt.Errorf("failed to build rankings: %w", err)
	}

	fmt.Fprintf(r.out, "Stored %s: %d tools, average score %.2f\n",
		result.Ranking.Period, result.Stats.TotalTools, result.Stats.AverageScore)
	if result.ChangeReport.Summary != "" {
		fmt.Fprintln(r.out, result.ChangeReport.Summary)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(r.out, "warning: %s\n", w)
	}
	return nil
}

// Preview prints the computed rankings of a period against its comparison period.
func (r *Runner) Preview(ctx context.Context, period, compareWith, previewDate string, asJSON bool) error {
	date, err := parsePreviewDate(previewDate)
	if err != nil {
		return err
	}
	if period == "" {
		period = ranking.CurrentPeriod(utils.TimeNow())
	}
	preview, err := r.rankings.Preview(ctx, ranking.PreviewRequest{
		Period:      period,
		CompareWith: compareWith,
		PreviewDate: date,
	})
	if err != nil {
		return fmt.Errorf("failed to preview rankings: %w", err)
	}
	if asJSON {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(preview)
	}
	r.printPreview(preview, 0)
	return nil
}

// Verify runs the QA check on a stored period, or the current one when period is empty.
func (r *Runner) Verify(ctx context.Context, period string) error {
	stored, err := r.findPeriod(ctx, period)
	if err != nil {
		return err
	}
	issues := scoring.ValidatePeriod(stored.Entries())
	fmt.Fprintf(r.out, "Period %s (%s): %d tools\n", stored.Period, stored.AlgorithmVersion, len(stored.Entries()))
	for _, w := range issues.Warnings {
		fmt.Fprintf(r.out, "warning: %s\n", w)
	}
	for _, e := range issues.Errors {
		fmt.Fprintf(r.out, "error: %s\n", e)
	}
	if !issues.OK() {
		return fmt.Errorf("%w: %d errors in %s", ErrVerificationFailed, len(issues.Errors), stored.Period)
	}
	fmt.Fprintln(r.out, "OK")
	return nil
}

// Export writes stored periods to the export directory. An empty period exports all of them.
func (r *Runner) Export(ctx context.Context, period string) error {
	var periods []entity.RankingPeriod
	if period != "" {
		stored, err := r.findPeriod(ctx, period)
		if err != nil {
			return err
		}
		periods = append(periods, *stored)
	} else {
		all, err := r.rankingRepo.ListPeriods(ctx)
		if err != nil {
			return fmt.Errorf("failed to list periods: %w", err)
		}
		periods = all
	}

	for i := range periods {
		path, err := r.fileStore.Write(&periods[i])
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Exported %s to %s\n", periods[i].Period, path)
		if periods[i].IsCurrent {
			if _, err := r.fileStore.WriteCurrent(&periods[i]); err != nil {
				return err
			}
		}
	}
	if len(periods) == 0 {
		fmt.Fprintln(r.out, "No periods to export.")
	}
	return nil
}

// Import validates a ranking JSON file and stores it.
func (r *Runner) Import(ctx context.Context, path string, setCurrent bool, opts Options) error {
	imported, err := repository.ReadRankingFile(path)
	if err != nil {
		return err
	}
	if _, err := ranking.PeriodStart(imported.Period); err != nil {
		return err
	}
	issues := scoring.ValidatePeriod(imported.Entries())
	if !issues.OK() {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, strings.Join(issues.Errors, "; "))
	}
	if imported.AlgorithmVersion == "" {
		imported.AlgorithmVersion = scoring.DefaultVersion
	}

	existing, err := r.rankingRepo.FindByPeriod(ctx, imported.Period)
	switch {
	case err == nil:
		fmt.Fprintf(r.out, "Period %s already exists with %d tools and will be replaced.\n", existing.Period, len(existing.Entries()))
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("failed to check period %s: %w", imported.Period, err)
	}

	fmt.Fprintf(r.out, "Importing %s: %d tools (%s)\n", imported.Period, len(imported.Entries()), imported.AlgorithmVersion)
	if opts.DryRun {
		fmt.Fprintln(r.out, "Dry run: nothing was stored.")
		return nil
	}
	if err := r.confirm(fmt.Sprintf("Import %s?", imported.Period), opts); err != nil {
		return err
	}

	imported.IsCurrent = false
	if err := r.rankingRepo.Save(ctx, imported); err != nil {
		return fmt.Errorf("failed to save period %s: %w", imported.Period, err)
	}
	if setCurrent {
		if err := r.rankingRepo.SetCurrent(ctx, imported.Period); err != nil {
			return fmt.Errorf("failed to set current period: %w", err)
		}
	}
	r.logger.Info("Ranking period imported", logger.StringField("period", imported.Period), logger.StringField("file", path))
	fmt.Fprintf(r.out, "Imported %s\n", imported.Period)
	return nil
}

// SetCurrent marks a stored period as the current one and refreshes the current rankings file.
func (r *Runner) SetCurrent(ctx context.Context, period string, opts Options) error {
	stored, err := r.findPeriod(ctx, period)
	if err != nil {
		return err
	}
	if stored.IsCurrent {
		fmt.Fprintf(r.out, "%s is already current.\n", stored.Period)
		return nil
	}
	if opts.DryRun {
		fmt.Fprintf(r.out, "Dry run: %s would become current.\n", stored.Period)
		return nil
	}
	if err := r.confirm(fmt.Sprintf("Make %s the current period?", stored.Period), opts); err != nil {
		return err
	}
	if err := r.rankingRepo.SetCurrent(ctx, stored.Period); err != nil {
		return fmt.Errorf("failed to set current period: %w", err)
	}
	stored.IsCurrent = true
	path, err := r.fileStore.WriteCurrent(stored)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s is now current (%s)\n", stored.Period, path)
	return nil
}

func (r *Runner) findPeriod(ctx context.Context, period string) (*entity.RankingPeriod, error) {
	var (
		stored *entity.RankingPeriod
		err    error
	)
	if period == "" {
		stored, err = r.rankingRepo.FindCurrent(ctx)
	} else {
		stored, err = r.rankingRepo.FindByPeriod(ctx, period)
	}
	if errors.Is(err, repository.ErrNotFound) {
		if period == "" {
			return nil, fmt.Errorf("no current period: %w", err)
		}
		return nil, fmt.Errorf("period %s: %w", period, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load period: %w", err)
	}
	return stored, nil
}

func (r *Runner) confirm(question string, opts Options) error {
	if opts.AutoConfirm {
		return nil
	}
	fmt.Fprintf(r.out, "%s [y/N]: ", question)
	answer, err := r.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return ErrAborted
	}
}

func (r *Runner) printPreview(p *ranking.PreviewResult, limit int) {
	fmt.Fprintf(r.out, "Period %s (%s): %d tools", p.Period, p.AlgorithmVersion, p.TotalTools)
	if p.IsInitialRanking {
		fmt.Fprint(r.out, ", initial ranking")
	} else if p.ComparisonPeriod != "" {
		fmt.Fprintf(r.out, ", compared with %s", p.ComparisonPeriod)
	}
	fmt.Fprintln(r.out)

	rows := p.RankingsComparison
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTool\tScore\tChange\tMovement")
	for _, c := range rows {
		change := "-"
		if c.CurrentPosition != nil {
			change = fmt.Sprintf("%+d", c.PositionChange)
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\t%s\n", c.NewPosition, c.ToolName, c.NewScore, change, c.Movement)
	}
	_ = tw.Flush()

	s := p.Summary
	fmt.Fprintf(r.out, "Up %d, down %d, same %d, new %d, dropped %d\n",
		s.ToolsMovedUp, s.ToolsMovedDown, s.ToolsStayedSame, p.NewEntries, p.DroppedEntries)
	for _, w := range p.Issues.Warnings {
		fmt.Fprintf(r.out, "warning: %s\n", w)
	}
	for _, e := range p.Issues.Errors {
		fmt.Fprintf(r.out, "error: %s\n", e)
	}
}

func parsePreviewDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid preview date %q: %w", value, err)
	}
	return &t, nil
}
