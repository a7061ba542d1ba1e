package command

import (
	"fmt"
	"strings"

	"github.com/sandevgo/matgram/internal/telegram"
)

const searchResultLimit = 10

func cmdSearch(evt *Event) error {
	if len(evt.Args) == 0 {
		return evt.Reply("**Usage:** `$cmdprefix+sp search [-r|--remote] <query>`")
	}

	args := evt.Args
	remote := false
	if args[0] == "-r" || args[0] == "--remote" {
		remote = true
		args = args[1:]
	}
	query := strings.Join(args, " ")
	if remote && len(query) < 5 {
		return evt.Reply("Minimum length of query for remote search is 5 characters.")
	}

	results, err := evt.Sender.Client().Search(evt.Ctx, query, searchResultLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		return evt.Reply("No results.")
	}

	reply := []string{"**Results from Telegram server:**", ""}
	for _, user := range results {
		name := strings.TrimSpace(user.FirstName + " " + user.LastName)
		if user.Username != "" {
			reply = append(reply, fmt.Sprintf("* %s (@%s): %d", name, user.Username, user.ID))
		} else {
			reply = append(reply, fmt.Sprintf("* %s: %d", name, user.ID))
		}
	}
	return evt.Reply(strings.Join(reply, "\n"))
}

func cmdPM(evt *Event) error {
	if len(evt.Args) == 0 {
		return evt.Reply("**Usage:** `$cmdprefix+sp pm <user identifier>`")
	}

	entity, err := evt.Sender.Client().GetEntity(evt.Ctx, evt.Args[0])
	if err != nil {
		return fmt.Errorf("get entity: %w", err)
	}
	if entity == nil {
		return evt.Reply("User not found.")
	}
	if entity.Kind != telegram.EntityUser {
		return evt.Reply("That doesn't seem to be a user.")
	}

	name := strings.TrimSpace(entity.FirstName + " " + entity.LastName)
	if name == "" {
		name = entity.Username
	}
	return evt.Reply(fmt.Sprintf("Found %s (ID %d). A private chat portal will be "+
		"created as soon as the conversation receives a message.", name, entity.ID))
}

func cmdJoin(evt *Event) error {
	if len(evt.Args) == 0 {
		return evt.Reply("**Usage:** `$cmdprefix+sp join <invite link>`")
	}

	target, ok := telegram.ParseJoinLink(evt.Args[0])
	if !ok {
		return evt.Reply("That doesn't look like a Telegram invite link.")
	}

	client := evt.Sender.Client()
	if target.InviteHash != "" {
		invite, err := client.CheckInvite(evt.Ctx, target.InviteHash)
		switch {
		case telegram.IsKind(err, telegram.KindInviteHashInvalid):
			return evt.Reply("Invalid invite link.")
		case telegram.IsKind(err, telegram.KindInviteHashExpired):
			return evt.Reply("Invite link expired.")
		case err != nil:
			return fmt.Errorf("check invite: %w", err)
		}
		if len(invite.AlreadyInIDs) > 0 {
			return evt.Reply("You are already in that chat.")
		}

		if err := client.ImportInvite(evt.Ctx, target.InviteHash); err != nil {
			if telegram.IsKind(err, telegram.KindAlreadyParticipant) {
				return evt.Reply("You are already in that chat.")
			}
			return fmt.Errorf("import invite: %w", err)
		}
		if invite.Title != "" {
			return evt.Reply(fmt.Sprintf("Successfully joined %s.", invite.Title))
		}
		return evt.Reply("Successfully joined the chat.")
	}

	channel, err := client.GetEntity(evt.Ctx, target.Channel)
	if err != nil {
		return fmt.Errorf("get channel: %w", err)
	}
	if channel == nil {
		return evt.Reply("Channel/supergroup not found.")
	}
	if err := client.JoinChannel(evt.Ctx, channel); err != nil {
		if telegram.IsKind(err, telegram.KindAlreadyParticipant) {
			return evt.Reply("You are already in that chat.")
		}
		return fmt.Errorf("join channel: %w", err)
	}
	if channel.Title != "" {
		return evt.Reply(fmt.Sprintf("Successfully joined %s.", channel.Title))
	}
	return evt.Reply("Successfully joined the channel.")
}
