package bot

import (
	"sync"
	"time"
)

// Limiter caps how many commands a chat may issue per minute, with a
// fixed one-minute window per chat.
type Limiter struct {
	mu          sync.Mutex
	chats       map[int64]*chatInfo
	stopCleanup chan struct{}
	stopOnce    sync.Once

	commandsPerMinute int
	cleanupInterval   time.Duration
}

type chatInfo struct {
	lastCommand time.Time
	commands    int
}

// NewLimiter creates a rate limiter allowing commandsPerMinute per chat.
func NewLimiter(commandsPerMinute int) *Limiter {
	if commandsPerMinute <= 0 {
		commandsPerMinute = 20
	}
	l := &Limiter{
		chats:             make(map[int64]*chatInfo),
		stopCleanup:       make(chan struct{}),
		commandsPerMinute: commandsPerMinute,
		cleanupInterval:   5 * time.Minute,
	}
	go l.startCleanup()
	return l
}

// Allow reports whether a command from the given chat should be handled.
func (l *Limiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	chat, exists := l.chats[chatID]

	if !exists {
		l.chats[chatID] = &chatInfo{
			lastCommand: now,
			commands:    1,
		}
		return true
	}

	// Reset the counter once the window has passed.
	if now.Sub(chat.lastCommand) > time.Minute {
		chat.commands = 1
		chat.lastCommand = now
		return true
	}

	chat.commands++
	chat.lastCommand = now

	return chat.commands <= l.commandsPerMinute
}

func (l *Limiter) startCleanup() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup drops chats that have been idle for longer than the window.
func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-time.Minute)
	for id, chat := range l.chats {
		if chat.lastCommand.Before(cutoff) {
			delete(l.chats, id)
		}
	}
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCleanup)
	})
}
