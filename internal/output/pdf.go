package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"workforce-scheduler/internal/models"
)

// PDFGenerator prints the HTML roster to PDF through headless Chrome.
type PDFGenerator struct {
	Logger  *zap.Logger
	Timeout time.Duration
}

func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFGenerator{Logger: logger, Timeout: 60 * time.Second}
}

// Generate writes a landscape PDF roster for the given days.
func (g *PDFGenerator) Generate(
	ctx context.Context,
	schedules []*models.DaySchedule,
	req *models.ScheduleRequest,
	associatesByID map[string]*models.Associate,
	outputPath string,
) error {
	var html strings.Builder
	if err := WriteHTML(&html, schedules, req, associatesByID); err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "roster-*.html")
	if err != nil {
		return fmt.Errorf("temp roster file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(html.String()); err != nil {
		tmp.Close()
		return err
	}
	tmp.Close()

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()
	browserCtx, browserCancel := chromedp.NewContext(ctx)
	defer browserCancel()

	fileURL := "file://" + filepath.ToSlash(tmp.Name())
	g.Logger.Debug("printing roster", zap.String("url", fileURL), zap.String("output", outputPath))

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(fileURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var printErr error
			pdf, _, printErr = page.PrintToPDF().
				WithLandscape(true).
				WithPrintBackground(true).
				WithPaperWidth(11.69).
				WithPaperHeight(8.27).
				Do(ctx)
			return printErr
		}),
	)
	if err != nil {
		return fmt.Errorf("print to pdf: %w", err)
	}

	if err := os.WriteFile(outputPath, pdf, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	g.Logger.Info("roster written", zap.String("path", outputPath), zap.Int("bytes", len(pdf)))
	return nil
}
