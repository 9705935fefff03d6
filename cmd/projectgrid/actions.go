package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dconn.dev/projectgrid/internal/models"
	"dconn.dev/projectgrid/internal/render"
	"dconn.dev/projectgrid/internal/services"
)

var (
	listFilter string
	listJSON   bool

	uploadTitle       string
	uploadDescription string
	uploadType        string

	downloadOutput string

	deleteYes bool
)

// listCmd prints the project grid
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, optionally filtered by type",
	Long: `List projects from the projects API.

Examples:
  projectgrid list
  projectgrid list --filter video
  projectgrid list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// uploadCmd creates a project
var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a new project",
	Long: `Upload a file as a new project. Title, description and type are required.

Examples:
  projectgrid upload --title Snake --description "pygame snake" --type python snake.zip`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

// downloadCmd saves a project's file
var downloadCmd = &cobra.Command{
	Use:   "download ID",
	Short: "Download a project's file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

// deleteCmd removes a project
var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a project",
	Long: `Delete a project after confirmation.

Examples:
  projectgrid delete 12
  projectgrid delete 12 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "all", "project type to show (all, python, video, musica, juego, other)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the rendered cards as JSON")

	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "project title")
	uploadCmd.Flags().StringVar(&uploadDescription, "description", "", "project description")
	uploadCmd.Flags().StringVar(&uploadType, "type", "", "project type")

	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output path (default: server-suggested name)")

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	ctx := cmd.Context()
	if err := a.service.Load(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), render.LoadFailed)
		return err
	}
	state := a.service.Snapshot()
	view := render.Grid(state.Projects, models.ParseFilter(listFilter), a.cfg.UI.DateLayout)

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	if view.Empty != "" {
		fmt.Fprintln(out, view.Empty)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIPO\tTÍTULO\tSUBIDO")
	for _, c := range view.Cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Label, c.Title, c.UploadDate)
	}
	return tw.Flush()
}

func runUpload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	form := models.UploadForm{
		Title:       uploadTitle,
		Description: uploadDescription,
		Type:        uploadType,
	}
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", args[0], err)
		}
		form.File = f
		form.FileName = filepath.Base(args[0])
		form.FileSize = info.Size()
		fmt.Fprintln(cmd.ErrOrStderr(), render.FileInfo(form.FileName, form.FileSize))
	}

	defer a.session.Close()
	err = a.service.Upload(cmd.Context(), a.session, form)
	msg := a.session.Status()
	if err != nil {
		if !msg.Empty() {
			fmt.Fprintln(cmd.ErrOrStderr(), msg.Text)
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg.Text)
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	id := args[0]
	dir := "."
	if downloadOutput != "" {
		dir = filepath.Dir(downloadOutput)
	}
	tmp, err := os.CreateTemp(dir, ".projectgrid-download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	suggested, n, err := a.client.Download(cmd.Context(), id, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), services.MsgDownloadFailed)
		return err
	}

	target := downloadOutput
	if target == "" {
		target = filepath.Base(suggested)
		if suggested == "" || target == "." || target == string(filepath.Separator) {
			target = filepath.Base(id)
		}
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", target, n)
	return nil
}

// errAborted is returned when the user declines the confirmation
var errAborted = errors.New("aborted")

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if !deleteYes {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "¿Estás seguro de que quieres eliminar este proyecto? [s/N] ")
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	if err := a.service.Delete(cmd.Context(), id); err != nil {
		msg := services.MsgDeleteFailed
		if errors.Is(err, services.ErrNotFound) {
			msg = services.MsgDeleteNotFound
		}
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "si", "sí", "y", "yes":
		return true, nil
	}
	return false, nil
}
