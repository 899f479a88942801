package cmd

import (
	"crypto/rand"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/chartline/internal/render"
	"github.com/derickschaefer/chartline/internal/store"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and replay exact command lines",
	Long: `Snapshots let you save a chartline command and replay it later,
producing the same scene from the same stored dataset and parameters.

  chartline snapshot save --name "q1-area" --cmd "render area --dataset prices --after 2024-01-01 --out q1.svg"
  chartline snapshot list
  chartline snapshot run <ID>`,
}

// ─── snapshot save ────────────────────────────────────────────────────────────

var (
	snapshotSaveName string
	snapshotSaveCmd  string
)

var snapshotSaveCommand = &cobra.Command{
	Use:   "save",
	Short: "Save a command line as a named snapshot",
	Example: `  chartline snapshot save --name "weekly-bars" --cmd "render stacked --dataset prices --resample weekly --format png --out bars.png"
  chartline snapshot save --name "hover" --cmd "tooltip scatter --dataset moves --x 200 --x 640"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotSaveName == "" {
			return fmt.Errorf("--name is required")
		}
		if snapshotSaveCmd == "" {
			return fmt.Errorf("--cmd is required")
		}
		if err := checkCommandLine(snapshotSaveCmd); err != nil {
			return err
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		st, err := deps.Store()
		if err != nil {
			return err
		}

		id := newSnapshotID()
		snap := store.Snapshot{
			ID:          id,
			Name:        snapshotSaveName,
			CommandLine: snapshotSaveCmd,
			CreatedAt:   time.Now().UTC(),
		}
		if err := st.PutSnapshot(snap); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved snapshot %s  (%s)\n", id, snapshotSaveName)
		return nil
	},
}

// ─── snapshot list ────────────────────────────────────────────────────────────

var snapshotListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all saved snapshots",
	Example: `  chartline snapshot list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		st, err := deps.Store()
		if err != nil {
			return err
		}

		snaps, err := st.ListSnapshots()
		if err != nil {
			return fmt.Errorf("listing snapshots: %w", err)
		}
		if len(snaps) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No snapshots saved.")
			fmt.Fprintln(cmd.OutOrStdout(), "  Use: chartline snapshot save --name <name> --cmd \"<command>\"")
			return nil
		}

		printSimpleTable(cmd.OutOrStdout(), []string{"ID", "NAME", "COMMAND", "CREATED"}, func(add func(...string)) {
			for _, s := range snaps {
				add(s.ID, s.Name, truncate(s.CommandLine, 50), s.CreatedAt.Format("2006-01-02 15:04"))
			}
		})
		return nil
	},
}

// ─── snapshot show ────────────────────────────────────────────────────────────

var snapshotShowCmd = &cobra.Command{
	Use:     "show <ID>",
	Short:   "Show full details of a snapshot",
	Example: `  chartline snapshot show 01HX...`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		st, err := deps.Store()
		if err != nil {
			return err
		}

		snap, ok, err := st.GetSnapshot(args[0])
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}
		if !ok {
			return fmt.Errorf("snapshot %q not found", args[0])
		}

		render.KV(cmd.OutOrStdout(), [][]string{
			{"ID", snap.ID},
			{"Name", snap.Name},
			{"Command", snap.CommandLine},
			{"Created", snap.CreatedAt.Format(time.RFC3339)},
		})
		return nil
	},
}

// ─── snapshot run ─────────────────────────────────────────────────────────────

var snapshotRunCmd = &cobra.Command{
	Use:     "run <ID>",
	Short:   "Re-execute a saved snapshot",
	Example: `  chartline snapshot run 01HX...`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		st, err := deps.Store()
		if err != nil {
			return err
		}

		// Read snapshot BEFORE closing the store
		snap, ok, err := st.GetSnapshot(args[0])
		deps.Close() // the child process opens its own handle
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}
		if !ok {
			return fmt.Errorf("snapshot %q not found", args[0])
		}

		// Re-execute using the current binary with the stored command line.
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("finding executable: %w", err)
		}

		parts := strings.Fields(snap.CommandLine)
		c := exec.CommandContext(cmd.Context(), self, parts...)
		c.Stdout = cmd.OutOrStdout()
		c.Stderr = cmd.ErrOrStderr()

		if !deps.Config.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "▶ %s %s\n\n", self, snap.CommandLine)
		}
		return c.Run()
	},
}

// ─── snapshot delete ──────────────────────────────────────────────────────────

var snapshotDeleteCmd = &cobra.Command{
	Use:     "delete <ID>",
	Short:   "Delete a saved snapshot",
	Example: `  chartline snapshot delete 01HX...`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		st, err := deps.Store()
		if err != nil {
			return err
		}

		snap, ok, err := st.GetSnapshot(args[0])
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}
		if !ok {
			return fmt.Errorf("snapshot %q not found", args[0])
		}

		if err := st.DeleteSnapshot(args[0]); err != nil {
			return fmt.Errorf("deleting snapshot: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted snapshot %s  (%s)\n", snap.ID, snap.Name)
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotSaveCommand)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotRunCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)

	snapshotSaveCommand.Flags().StringVar(&snapshotSaveName, "name", "", "human-readable name for the snapshot (required)")
	snapshotSaveCommand.Flags().StringVar(&snapshotSaveCmd, "cmd", "", "command line to save, without the binary name (required)")
	snapshotSaveCommand.MarkFlagRequired("name")
	snapshotSaveCommand.MarkFlagRequired("cmd")
}

// checkCommandLine rejects a snapshot whose first word is not a chartline
// command, so that run cannot start something unexpected.
func checkCommandLine(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return fmt.Errorf("--cmd is empty")
	}
	if parts[0] == "chartline" {
		return fmt.Errorf("--cmd should not include the binary name: %q", line)
	}
	found, _, err := rootCmd.Find(parts)
	if err != nil || found == rootCmd {
		return fmt.Errorf("--cmd %q does not start with a chartline command", line)
	}
	if found == snapshotRunCmd {
		return fmt.Errorf("a snapshot cannot run another snapshot")
	}
	return nil
}

// ─── ID generation ────────────────────────────────────────────────────────────

// crockford is the ULID alphabet: base32 without I, L, O and U.
const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var lastSnapshotID struct {
	sync.Mutex
	ms      int64
	entropy [10]byte
}

// newSnapshotID generates a 26-character ULID: a 48-bit millisecond
// timestamp followed by 80 random bits, Crockford base32 encoded. IDs made
// within the same millisecond increment the random part, so they stay
// unique and sorted.
func newSnapshotID() string {
	lastSnapshotID.Lock()
	defer lastSnapshotID.Unlock()

	ms := time.Now().UTC().UnixMilli()
	if ms == lastSnapshotID.ms {
		incEntropy(&lastSnapshotID.entropy)
	} else {
		if _, err := rand.Read(lastSnapshotID.entropy[:]); err != nil {
			panic("snapshot id entropy: " + err.Error())
		}
		lastSnapshotID.ms = ms
	}

	var raw [16]byte
	for i := 0; i < 6; i++ {
		raw[i] = byte(ms >> (40 - 8*i))
	}
	copy(raw[6:], lastSnapshotID.entropy[:])
	return encodeULID(raw)
}

func incEntropy(e *[10]byte) {
	for i := len(e) - 1; i >= 0; i-- {
		e[i]++
		if e[i] != 0 {
			return
		}
	}
}

// encodeULID writes the 128-bit value as 26 base32 digits, most
// significant first. The leading digit carries only 3 bits.
func encodeULID(raw [16]byte) string {
	var out [26]byte
	var acc uint32
	bits := 2 // 26*5 = 130: pad with two leading zero bits
	idx := 0
	for _, b := range raw {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[idx] = crockford[(acc>>uint(bits))&0x1F]
			idx++
		}
	}
	return string(out[:])
}
