package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/nsf/termbox-go"

	"github.com/FireRat666/Banter-Reversi/internal/game"
)

// Board layout on screen: each cell is cellWidth columns wide, one row high.
const (
	boardX    = 4
	boardY    = 2
	cellWidth = 3
	resetY    = boardY + game.Size + 2
	resetText = "[ Reset ]"
	statusY   = boardY + game.Size + 1
	helpY     = resetY + 2
)

var (
	colorBoard  = termbox.ColorGreen
	colorValid  = termbox.ColorBlue
	colorCursor = termbox.ColorCyan
	colorWinner = termbox.ColorYellow
)

// TerminalOptions configures a Terminal.
type TerminalOptions struct {
	Title     string
	HideReset bool
}

// Terminal is a termbox renderer. Update only records the latest state;
// drawing happens on the Run goroutine, so emitters never wait on the
// screen.
type Terminal struct {
	opts    TerminalOptions
	updates chan State

	mu     sync.Mutex
	cursor game.Pos
	last   State
	ready  bool
}

// NewTerminal creates a terminal renderer. Call Run to take over the screen.
func NewTerminal(opts TerminalOptions) *Terminal {
	return &Terminal{
		opts:    opts,
		updates: make(chan State, 1),
		cursor:  game.Pos{Row: 3, Col: 3},
	}
}

// Update implements Consumer. A pending, undrawn state is replaced.
func (t *Terminal) Update(s State) {
	for {
		select {
		case t.updates <- s:
			return
		default:
		}
		select {
		case <-t.updates:
		default:
		}
	}
}

// Run owns the terminal until ctx is done or the user quits. Clicks and
// resets are forwarded to in.
func (t *Terminal) Run(ctx context.Context, in Input) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)

	events := make(chan termbox.Event)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			// After stop, keep polling so the Interrupt below is received.
			select {
			case events <- ev:
			case <-stop:
			}
		}
	}()
	defer func() {
		close(stop)
		termbox.Interrupt()
		wg.Wait()
	}()

	t.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-t.updates:
			t.mu.Lock()
			t.last, t.ready = s, true
			t.mu.Unlock()
			t.draw()
		case ev := <-events:
			if ev.Type == termbox.EventError {
				return fmt.Errorf("terminal event: %w", ev.Err)
			}
			if quit := t.handle(ev, in); quit {
				return nil
			}
			t.draw()
		}
	}
}

// handle interprets one input event. Returns true when the user quits.
func (t *Terminal) handle(ev termbox.Event, in Input) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Type {
	case termbox.EventKey:
		switch {
		case ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q':
			return true
		case ev.Key == termbox.KeyArrowUp:
			t.cursor.Row = clamp(t.cursor.Row - 1)
		case ev.Key == termbox.KeyArrowDown:
			t.cursor.Row = clamp(t.cursor.Row + 1)
		case ev.Key == termbox.KeyArrowLeft:
			t.cursor.Col = clamp(t.cursor.Col - 1)
		case ev.Key == termbox.KeyArrowRight:
			t.cursor.Col = clamp(t.cursor.Col + 1)
		case ev.Key == termbox.KeyEnter || ev.Key == termbox.KeySpace:
			in.Click(t.cursor.Row, t.cursor.Col)
		case ev.Ch == 'r' && !t.opts.HideReset:
			in.Reset()
		}
	case termbox.EventMouse:
		if ev.Key != termbox.MouseLeft {
			return false
		}
		if p, ok := cellAt(ev.MouseX, ev.MouseY); ok {
			t.cursor = p
			in.Click(p.Row, p.Col)
			return false
		}
		if !t.opts.HideReset && onReset(ev.MouseX, ev.MouseY) {
			in.Reset()
		}
	}
	return false
}

// cellAt maps a screen position to a board cell.
func cellAt(x, y int) (game.Pos, bool) {
	if x < boardX || y < boardY {
		return game.Pos{}, false
	}
	p := game.Pos{Row: y - boardY, Col: (x - boardX) / cellWidth}
	return p, game.InBounds(p.Row, p.Col)
}

func onReset(x, y int) bool {
	return y == resetY && x >= boardX && x < boardX+len(resetText)
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v >= game.Size:
		return game.Size - 1
	default:
		return v
	}
}

func (t *Terminal) draw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	_ = termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	drawText(0, 0, t.opts.Title, termbox.ColorDefault|termbox.AttrBold, termbox.ColorDefault)

	for c := 0; c < game.Size; c++ {
		termbox.SetCell(boardX+c*cellWidth+1, boardY-1, rune('0'+c), termbox.ColorDefault, termbox.ColorDefault)
	}
	for r := 0; r < game.Size; r++ {
		termbox.SetCell(boardX-2, boardY+r, rune('0'+r), termbox.ColorDefault, termbox.ColorDefault)
		for c := 0; c < game.Size; c++ {
			view := t.last.Cells[r][c]
			fg, bg := cellColors(view)
			if t.cursor.Row == r && t.cursor.Col == c {
				bg = colorCursor
			}
			ch := ' '
			switch view.Occupant {
			case game.Black:
				ch, fg = '●', termbox.ColorBlack
			case game.White:
				ch, fg = '●', termbox.ColorWhite
			}
			x := boardX + c*cellWidth
			termbox.SetCell(x, boardY+r, ' ', fg, bg)
			termbox.SetCell(x+1, boardY+r, ch, fg, bg)
			termbox.SetCell(x+2, boardY+r, ' ', fg, bg)
		}
	}

	status := "Waiting for game state..."
	if t.ready {
		status = Status(t.last)
	}
	drawText(boardX, statusY, status, termbox.ColorDefault, termbox.ColorDefault)
	if !t.opts.HideReset {
		drawText(boardX, resetY, resetText, termbox.ColorWhite|termbox.AttrBold, termbox.ColorRed)
	}
	drawText(0, helpY, "arrows/click: select  enter: place  r: reset  q: quit", termbox.ColorDefault, termbox.ColorDefault)
	_ = termbox.Flush()
}

func cellColors(v CellView) (fg, bg termbox.Attribute) {
	switch {
	case v.IsWinnerCell:
		return termbox.ColorDefault, colorWinner
	case v.HighlightValid:
		return termbox.ColorDefault, colorValid
	default:
		return termbox.ColorDefault, colorBoard
	}
}

func drawText(x, y int, s string, fg, bg termbox.Attribute) {
	for _, r := range s {
		termbox.SetCell(x, y, r, fg, bg)
		x++
	}
}
