package platform

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spaghettifunk/configurator/engine/containers"
	"github.com/spaghettifunk/configurator/engine/core"
)

type HeadlessHostConfig struct {
	// Directory print sheets are written to.
	PrintDir string
	// Called by Reset, if set.
	OnReset func(ctx context.Context) error
	// Optional line-based command stream, e.g. os.Stdin.
	Commands io.Reader
	// Where command replies go; defaults to os.Stdout.
	Output io.Writer
}

/**
 * @brief A host without a browser. Print renders a PNG sheet, Share reports
 * unsupported and commands read from a stream drive the configurator:
 *
 *	parts                  list parts and their colours
 *	select <part>          pointer-down on a part (name, key or id)
 *	hover <part> | out     pointer over / out
 *	colour <hex>           set the pending colour
 *	swatch <hex>           pick a palette swatch
 *	apply | print | share | reset | quit
 */
type HeadlessHost struct {
	config HeadlessHostConfig
	events *core.EventSystem
	input  *core.Input

	mutex  sync.RWMutex
	state  State
	prints *containers.RingQueue[string]
}

// Number of print sheets remembered by Prints.
const printHistory = 8

func NewHeadlessHost(config HeadlessHostConfig, events *core.EventSystem, input *core.Input) *HeadlessHost {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.PrintDir == "" {
		config.PrintDir = "."
	}
	return &HeadlessHost{
		config: config,
		events: events,
		input:  input,
		prints: containers.NewRingQueue[string](printHistory),
	}
}

func (hh *HeadlessHost) Startup(ctx context.Context) error {
	if err := os.MkdirAll(hh.config.PrintDir, 0o755); err != nil {
		return fmt.Errorf("creating print directory: %w", err)
	}
	if hh.config.Commands != nil {
		go hh.readCommands(ctx)
	}
	core.LogInfo("Headless host started, prints go to '%s'.", hh.config.PrintDir)
	return nil
}

func (hh *HeadlessHost) Shutdown() error {
	return nil
}

// Print writes the document as a PNG sheet into the print directory.
func (hh *HeadlessHost) Print(ctx context.Context, doc PrintDocument) error {
	if doc.Created.IsZero() {
		doc.Created = time.Now()
	}
	name := fmt.Sprintf("%s-%s.png", sanitizeFileName(doc.Scene), doc.Created.Format("20060102-150405.000"))
	path := filepath.Join(hh.config.PrintDir, name)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSheet(f, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	hh.mutex.Lock()
	hh.prints.Push(path)
	hh.mutex.Unlock()

	core.LogInfo("Printed '%s' to %s.", doc.Title, path)
	return nil
}

// LastPrint returns the path of the most recent print sheet.
func (hh *HeadlessHost) LastPrint() string {
	hh.mutex.RLock()
	defer hh.mutex.RUnlock()
	items := hh.prints.Items()
	if len(items) == 0 {
		return ""
	}
	return items[len(items)-1]
}

// Prints returns the paths of the most recent print sheets, oldest first.
func (hh *HeadlessHost) Prints() []string {
	hh.mutex.RLock()
	defer hh.mutex.RUnlock()
	return hh.prints.Items()
}

func (hh *HeadlessHost) Share(ctx context.Context, payload SharePayload) (ShareOutcome, error) {
	core.LogWarn("Sharing is not supported on this platform.")
	fmt.Fprintln(hh.config.Output, "Sharing is not supported on this platform.")
	return ShareUnsupported, nil
}

func (hh *HeadlessHost) Reset(ctx context.Context) error {
	if hh.config.OnReset == nil {
		return nil
	}
	return hh.config.OnReset(ctx)
}

func (hh *HeadlessHost) PublishState(state State) {
	hh.mutex.Lock()
	defer hh.mutex.Unlock()
	hh.state = state
}

func (hh *HeadlessHost) PublishModel(name string, data []byte) {
	core.LogDebug("Headless host received model '%s' (%d bytes).", name, len(data))
}

func (hh *HeadlessHost) readCommands(ctx context.Context) {
	scanner := bufio.NewScanner(hh.config.Commands)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := hh.execute(line); err != nil {
			fmt.Fprintf(hh.config.Output, "error: %s\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		core.LogError("Reading commands: %s", err.Error())
	}
}

func (hh *HeadlessHost) execute(line string) error {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	post := func(code core.EventCode, data interface{}) error {
		return hh.events.Post(core.EventContext{Type: code, Sender: hh, Data: data})
	}
	arg := func() (string, error) {
		if len(args) == 0 {
			return "", fmt.Errorf("%s: missing argument", cmd)
		}
		return strings.Join(args, " "), nil
	}

	switch cmd {
	case "parts":
		hh.listParts()
		return nil
	case "select", "hover":
		ref, err := arg()
		if err != nil {
			return err
		}
		id, err := hh.resolve(ref)
		if err != nil {
			return err
		}
		pe := &core.PointerEvent{Button: core.BUTTON_LEFT, MeshID: id}
		if cmd == "select" {
			err = hh.input.ProcessPointerDown(pe)
			hh.input.ProcessPointerUp(core.BUTTON_LEFT)
			return err
		}
		return hh.input.ProcessPointerMove(pe)
	case "out":
		return hh.input.ProcessPointerOut()
	case "colour", "color", "swatch":
		value, err := arg()
		if err != nil {
			return err
		}
		return post(core.EVENT_CODE_COLOUR_CHANGED, &core.ColourEvent{Value: value, Swatch: cmd == "swatch"})
	case "apply":
		return post(core.EVENT_CODE_APPLY_CHANGES, nil)
	case "print":
		return post(core.EVENT_CODE_PRINT, nil)
	case "share":
		return post(core.EVENT_CODE_SHARE, nil)
	case "reset":
		return post(core.EVENT_CODE_RESET, nil)
	case "quit", "exit":
		return post(core.EVENT_CODE_APPLICATION_QUIT, nil)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// resolve finds a part by id, key or case-insensitive name.
func (hh *HeadlessHost) resolve(ref string) (string, error) {
	hh.mutex.RLock()
	defer hh.mutex.RUnlock()
	for _, m := range hh.state.Meshes {
		if m.ID == ref || m.Key == ref || strings.EqualFold(m.Name, ref) {
			return m.ID, nil
		}
	}
	return "", fmt.Errorf("no part %q", ref)
}

func (hh *HeadlessHost) listParts() {
	hh.mutex.RLock()
	defer hh.mutex.RUnlock()
	for _, m := range hh.state.Meshes {
		marker := " "
		if hh.state.Selected != nil && hh.state.Selected.ID == m.ID {
			marker = "*"
		}
		fmt.Fprintf(hh.config.Output, "%s %-6s %-24s %-16s %s\n", marker, m.Key, m.Name, m.MaterialName, m.Colour)
	}
}

func sanitizeFileName(s string) string {
	if s == "" {
		return "configurator"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
