package command

import (
	"fmt"
	"strings"
)

func cmdCancel(evt *Event) error {
	if status := evt.Sender.CommandStatus(); status != nil {
		action := status.Action
		evt.Sender.SetCommandStatus(nil)
		return evt.Reply(fmt.Sprintf("%s cancelled.", action))
	}
	return evt.Reply("No ongoing command.")
}

func cmdUnknown(evt *Event) error {
	if evt.IsManagement {
		return evt.Reply("Unknown command. Try `help` for help.")
	}
	return evt.Reply("Unknown command. Try `$cmdprefix help` for help.")
}

var helpSectionTitles = map[HelpSection]string{
	SectionGeneric: "**Generic bridge commands**: commands for using the bridge that aren't related to Telegram.",
	SectionAuth:    "**Authentication commands**: commands for logging into Telegram.",
	SectionActions: "**Telegram actions**: commands for using the bridge to interact with Telegram.",
}

func cmdHelp(evt *Event) error {
	var preamble string
	switch {
	case evt.IsManagement:
		preamble = "This is a management room: prefixing commands with `$cmdprefix` is not required.\n"
	case evt.IsPortal:
		preamble = "**This is a portal room**: you must always prefix commands with `$cmdprefix`.\n" +
			"Management commands will not be sent to Telegram.\n"
	default:
		preamble = "**This is not a management room**: you must prefix commands with `$cmdprefix`.\n"
	}
	return evt.Reply(preamble + "\n" + evt.proc.helpText())
}

// helpText renders the usage reference from registry metadata, grouped by
// help section. Flow-internal handlers carry no help text and are skipped.
func (proc *Processor) helpText() string {
	var b strings.Builder
	for _, section := range []HelpSection{SectionGeneric, SectionAuth, SectionActions} {
		var lines []string
		for _, def := range proc.registry.All() {
			if def.HelpSection != section || def.HelpText == "" {
				continue
			}
			if def.HelpArgs != "" {
				lines = append(lines, fmt.Sprintf("**%s** %s - %s  ", def.Name, def.HelpArgs, def.HelpText))
			} else {
				lines = append(lines, fmt.Sprintf("**%s** - %s  ", def.Name, def.HelpText))
			}
		}
		if len(lines) == 0 {
			continue
		}
		b.WriteString("_" + helpSectionTitles[section] + "_  \n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
