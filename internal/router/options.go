package router

import "github.com/bwmarrin/discordgo"

// OptionExtractor reads typed values out of a command interaction's
// options without repeated slice scans at call sites.
type OptionExtractor struct {
	options map[string]*discordgo.ApplicationCommandInteractionDataOption
	session *discordgo.Session
}

// Options returns an extractor over the interaction's command options.
func (c *Context) Options() *OptionExtractor {
	e := &OptionExtractor{
		options: make(map[string]*discordgo.ApplicationCommandInteractionDataOption),
		session: c.Session,
	}
	for _, opt := range c.Interaction.ApplicationCommandData().Options {
		e.options[opt.Name] = opt
	}
	return e
}

func (e *OptionExtractor) Has(name string) bool {
	_, ok := e.options[name]
	return ok
}

func (e *OptionExtractor) String(name string) string {
	if opt, ok := e.options[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (e *OptionExtractor) Int(name string) int64 {
	if opt, ok := e.options[name]; ok {
		return opt.IntValue()
	}
	return 0
}

func (e *OptionExtractor) Float(name string) float64 {
	if opt, ok := e.options[name]; ok {
		return opt.FloatValue()
	}
	return 0
}

// ChannelID returns the id of a channel option, "" when absent.
func (e *OptionExtractor) ChannelID(name string) string {
	if opt, ok := e.options[name]; ok {
		if ch := opt.ChannelValue(nil); ch != nil {
			return ch.ID
		}
	}
	return ""
}

// User resolves a user option, nil when absent.
func (e *OptionExtractor) User(name string) *discordgo.User {
	if opt, ok := e.options[name]; ok {
		return opt.UserValue(e.session)
	}
	return nil
}
