package main

import "time"

// Player is the durable per-name record. ID is the current connection
// identifier and is rebound on every reconnect; Name is the stable key.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Question is loaded once from the question pack and never mutated.
type Question struct {
	Value    int    `json:"value"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Image    string `json:"image,omitempty"`
	YouTube  string `json:"youtube,omitempty"`
}

type Category struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// BuzzerEntry records one buzz; position in the round's sequence is the ranking.
type BuzzerEntry struct {
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Timestamp  time.Time `json:"timestamp"`
}

type GamePhase string

const (
	PhaseLobby       GamePhase = "lobby"
	PhasePlaying     GamePhase = "playing"
	PhaseQuestion    GamePhase = "question"
	PhaseAnswer      GamePhase = "answer"
	PhaseLeaderboard GamePhase = "leaderboard"
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "hostJoin", "playerJoin", "startGame", ...
	Name     string `json:"name,omitempty"`     // playerJoin
	Category string `json:"category,omitempty"` // selectQuestion
	Value    int    `json:"value,omitempty"`    // selectQuestion
	PlayerID string `json:"playerId,omitempty"` // correctAnswer / incorrectAnswer
}

// Snapshot is the full game state sent to every client after each event.
// There are no delta updates.
type Snapshot struct {
	Players           []Player      `json:"players"`
	CurrentQuestion   *Question     `json:"currentQuestion"`
	CurrentCategory   string        `json:"currentCategory,omitempty"`
	AnsweredQuestions []string      `json:"answeredQuestions"`
	BuzzerOrder       []BuzzerEntry `json:"buzzerOrder"`
	BuzzerLocked      bool          `json:"buzzerLocked"`
	Phase             GamePhase     `json:"phase"`
	ShowAnswer        bool          `json:"showAnswer"`
}

type GameStateMessage struct {
	Type  string   `json:"type"` // "gameState"
	State Snapshot `json:"state"`
}

// GameConfigMessage is sent once per connection on connect. The question
// skeleton carries point values only, never prompts or answers.
type GameConfigMessage struct {
	Type       string             `json:"type"` // "gameConfig"
	Title      string             `json:"title"`
	Countdown  int                `json:"countdown"` // advisory, display-only
	Categories []CategorySkeleton `json:"categories"`
}

type CategorySkeleton struct {
	Name      string          `json:"name"`
	Questions []ValueSkeleton `json:"questions"`
}

type ValueSkeleton struct {
	Value int `json:"value"`
}

// FullQuestionMessage goes to the host room only, on selectQuestion.
type FullQuestionMessage struct {
	Type     string `json:"type"` // "fullQuestion"
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Value    int    `json:"value"`
	Image    string `json:"image,omitempty"`
	YouTube  string `json:"youtube,omitempty"`
}

// BuzzerSoundMessage goes to the host room only, on a successful buzz.
type BuzzerSoundMessage struct {
	Type       string `json:"type"` // "buzzerSound"
	PlayerName string `json:"playerName"`
}
