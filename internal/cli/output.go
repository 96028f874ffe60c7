package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case CreatedGame:
		o.printCreatedGame(v)
	case Joined:
		o.printJoined(v)
	case Session:
		o.printSession(v)
	case Configuration:
		o.printConfiguration(v)
	case GameState:
		o.printGameState(v)
	case MapInfo:
		o.printMapInfo(v)
	case []MapInfo:
		o.printMapList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Color response type (matches API)
type Color struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.Red, c.Green, c.Blue)
}

// MapID response type
type MapID struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (m MapID) String() string {
	return m.Kind + "/" + m.ID
}

// PlayerSlot response type
type PlayerSlot struct {
	ID    int    `json:"playerId"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// Configuration response type
type Configuration struct {
	ID        string       `json:"id"`
	Version   int64        `json:"version"`
	MapID     MapID        `json:"mapId"`
	JoinToken string       `json:"joinToken"`
	Players   []PlayerSlot `json:"players"`
}

// CreatedGame response type
type CreatedGame struct {
	SessionID     string        `json:"sessionId"`
	JoinToken     string        `json:"joinToken"`
	PlayerToken   string        `json:"playerToken"`
	Configuration Configuration `json:"configuration"`
}

// Joined response type
type Joined struct {
	PlayerToken string `json:"playerToken"`
}

// TurnState response type
type TurnState struct {
	CurrentPlayerID int    `json:"playerId"`
	Stage           string `json:"playerTurnStage"`
}

// GamePlayer response type
type GamePlayer struct {
	ID      int     `json:"playerId"`
	Name    string  `json:"name"`
	Color   Color   `json:"color"`
	Capitol *string `json:"capitol,omitempty"`
}

// GameState response type
type GameState struct {
	ID      string       `json:"id"`
	MapID   MapID        `json:"mapId"`
	Players []GamePlayer `json:"players"`
	Turn    TurnState    `json:"playerTurn"`
}

// Session response type
type Session struct {
	State         string         `json:"state"`
	PlayerID      int            `json:"playerId"`
	Configuration *Configuration `json:"configuration,omitempty"`
	Game          *GameState     `json:"game,omitempty"`
}

// MapInfo response type
type MapInfo struct {
	ID   MapID           `json:"id"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printCreatedGame(c CreatedGame) {
	fmt.Printf("Session: %s\n", c.SessionID)
	fmt.Printf("Join Token: %s\n", c.JoinToken)
	fmt.Printf("Player Token: %s\n", c.PlayerToken)
	o.printConfiguration(c.Configuration)
}

func (o *Output) printJoined(j Joined) {
	fmt.Printf("Player Token: %s\n", j.PlayerToken)
}

func (o *Output) printSession(s Session) {
	fmt.Printf("State: %s\n", s.State)
	fmt.Printf("You are player %d\n", s.PlayerID)
	if s.Configuration != nil {
		o.printConfiguration(*s.Configuration)
	}
	if s.Game != nil {
		o.printGameState(*s.Game)
	}
}

func (o *Output) printConfiguration(c Configuration) {
	if c.ID != "" {
		fmt.Printf("Session: %s\n", c.ID)
	}
	fmt.Printf("Map: %s\n", c.MapID)
	if c.JoinToken != "" {
		fmt.Printf("Join Token: %s\n", c.JoinToken)
	}
	fmt.Printf("Players (%d):\n", len(c.Players))
	for i, p := range c.Players {
		hostStr := ""
		if i == 0 {
			hostStr = " [host]"
		}
		name := p.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("  %d. %s %s%s\n", p.ID, name, p.Color, hostStr)
	}
}

func (o *Output) printGameState(g GameState) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Map: %s\n", g.MapID)
	fmt.Printf("Turn: player %d, stage %s\n", g.Turn.CurrentPlayerID, g.Turn.Stage)
	fmt.Printf("Players (%d):\n", len(g.Players))
	for _, p := range g.Players {
		capitol := ""
		if p.Capitol != nil {
			capitol = fmt.Sprintf(", capitol %s", *p.Capitol)
		}
		fmt.Printf("  %d. %s %s%s\n", p.ID, p.Name, p.Color, capitol)
	}
}

func (o *Output) printMapInfo(m MapInfo) {
	fmt.Printf("Map: %s\n", m.ID)
	fmt.Printf("Name: %s\n", m.Name)
	if len(m.Data) > 0 {
		fmt.Printf("Data: %s\n", string(m.Data))
	}
}

func (o *Output) printMapList(maps []MapInfo) {
	fmt.Printf("Maps (%d):\n", len(maps))
	for _, m := range maps {
		fmt.Printf("  - %s: %s\n", m.ID, m.Name)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
