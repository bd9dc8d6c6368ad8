package entity

import (
	"fmt"
	"strings"
)

// Channel выбирает один цветовой канал для подачи в модель.
type Channel string

const (
	ChannelNone  Channel = ""      // изображение подаётся как есть
	ChannelRed   Channel = "red"   // канал 0
	ChannelGreen Channel = "green" // канал 1
	ChannelBlue  Channel = "blue"  // канал 2
)

// ParseChannel разбирает имя канала без учёта регистра.
// "gray" и пустая строка означают отсутствие выбора.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gray", "grey", "none":
		return ChannelNone, nil
	case "red":
		return ChannelRed, nil
	case "green":
		return ChannelGreen, nil
	case "blue":
		return ChannelBlue, nil
	default:
		return ChannelNone, fmt.Errorf("unknown channel %q (want red, green, blue or gray)", s)
	}
}

// Index возвращает индекс канала, -1 для ChannelNone.
func (c Channel) Index() int {
	switch c {
	case ChannelRed:
		return 0
	case ChannelGreen:
		return 1
	case ChannelBlue:
		return 2
	default:
		return -1
	}
}

func (c Channel) String() string {
	if c == ChannelNone {
		return "gray"
	}
	return string(c)
}
