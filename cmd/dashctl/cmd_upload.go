package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/laborwatch/cluedash/config"
	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/payload"
	"github.com/laborwatch/cluedash/upload"
	"github.com/laborwatch/cluedash/workbook"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// uploadEnv provides the environment for the upload command.
type uploadEnv struct {
	file12345  string
	fileAnxin  string
	outDir     string
	backendURL string
}

// getUploadCmd returns the definition of the upload command.
func getUploadCmd() *cobra.Command {
	env := &uploadEnv{}
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Send both spreadsheets to the processing backend and save the results",
		Long: `
Uploads the 12345 hotline export and the Anxin wage warning export, saves the summary
workbook returned by the backend and, when the backend sends dashboard data, writes
payload.json, dashboard.html and the chart options next to it.`,
		Run: env.runUploadCmd,
	}

	cmd.Flags().StringVar(&env.file12345, "file-12345", "", "12345 hotline spreadsheet")
	cmd.Flags().StringVar(&env.fileAnxin, "file-anxin", "", "Anxin warning spreadsheet")
	cmd.Flags().StringVar(&env.outDir, "out", "", "Output directory (defaults to the configured data folder)")
	cmd.Flags().StringVar(&env.backendURL, "backend", "", "Processing backend URL (overrides the configuration)")
	must(cmd.MarkFlagRequired("file-12345"))
	must(cmd.MarkFlagRequired("file-anxin"))

	return cmd
}

// runUploadCmd executes the upload command.
func (e *uploadEnv) runUploadCmd(cmd *cobra.Command, _ []string) {
	cfg := loadConfig(cmd)
	obs := newBarObserver(cmd.ErrOrStderr())
	ifErrLogExit(cmd, e.upload(cmd.Context(), cfg, obs, cmd.OutOrStdout()))
}

func (e *uploadEnv) upload(ctx context.Context, cfg *config.Config, obs upload.Observer, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	form, err := upload.LoadForm(e.file12345, e.fileAnxin)
	if err != nil {
		return err
	}
	client := upload.NewClient(cmp.Or(e.backendURL, cfg.Backend.URL), cfg.RequestTimeout())
	res, err := upload.NewController(client, obs).Submit(ctx, form)
	if err != nil {
		return errors.New(upload.Message(err))
	}
	fmt.Fprintln(out, upload.Message(nil))

	outDir := cmp.Or(e.outDir, cfg.Data.Folder)
	path, err := res.Save(outDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved workbook to %s\n", path)

	summary, err := workbook.Inspect(res.Workbook)
	if err != nil {
		log.Printf("Error inspecting workbook %s: %v", path, err)
	}
	if summary != nil {
		for _, s := range summary.Sheets {
			fmt.Fprintf(out, "  %s: %d rows\n", s.Name, s.Rows)
		}
	}

	if res.Payload == nil {
		fmt.Fprintln(out, "No dashboard data received")
		return nil
	}
	if err := payload.Save(res.Payload, filepath.Join(outDir, consts.PayloadFile)); err != nil {
		return err
	}
	page, err := writeDashboard(outDir, res.Payload, summary, consts.MsgSuccess)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote dashboard to %s\n", page)
	return nil
}

var phaseLabels = map[upload.Phase]string{
	upload.Idle:       "等待上传",
	upload.Uploading:  "上传中",
	upload.Processing: "处理中...",
	upload.Success:    "处理成功",
	upload.Failed:     "处理失败",
}

// barObserver draws the submission on a terminal progress bar.
type barObserver struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newBarObserver(w io.Writer) *barObserver {
	return &barObserver{
		w: w,
		bar: progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(phaseLabels[upload.Idle]),
			progressbar.OptionSetPredictTime(false),
		),
	}
}

func (b *barObserver) PhaseChanged(p upload.Phase) {
	b.bar.Describe(phaseLabels[p])
	if p == upload.Idle {
		_ = b.bar.Finish()
		fmt.Fprintln(b.w)
	}
}

func (b *barObserver) Progress(percent int) {
	_ = b.bar.Set(percent)
}

func (b *barObserver) Done(err error) {
	if err != nil {
		b.bar.Describe(upload.Message(err))
	}
}
