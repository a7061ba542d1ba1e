package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/matgram/internal/telegram"
)

func cmdPing(evt *Event) error {
	if !evt.Sender.LoggedIn(evt.Ctx) {
		return evt.Reply("You're not logged in.")
	}
	me, err := evt.Sender.Client().GetMe(evt.Ctx)
	if err != nil {
		return fmt.Errorf("get me: %w", err)
	}
	if me == nil {
		return evt.Reply("You're not logged in.")
	}
	return evt.Reply(fmt.Sprintf("You're logged in as @%s", me.Username))
}

func cmdPingBot(evt *Event) error {
	bot := evt.Bot()
	if bot == nil {
		return evt.Reply("Telegram message relay bot not configured.")
	}
	return evt.Reply(fmt.Sprintf(
		"Telegram message relay bot is active: %s (@%s, ID %d)\n\n"+
			"To use the bot, simply invite it to a portal room.",
		bot.Displayname(), bot.Username(), bot.ID()))
}

func cmdLogin(evt *Event) error {
	if evt.Sender.LoggedIn(evt.Ctx) {
		return evt.Reply("You are already logged in.")
	}

	allowMatrixLogin := evt.Config().MatrixLoginAllowed()
	if allowMatrixLogin {
		evt.Sender.SetCommandStatus(&Continuation{
			Next:   cmdEnterPhoneOrToken,
			Action: "Login",
		})
	}

	if evt.Config().PublicLoginEnabled() {
		url := evt.Config().PublicLoginURL(evt.Sender.MXID())
		if allowMatrixLogin {
			return evt.Reply(
				"This bridge instance allows you to log in inside or outside Matrix.\n\n" +
					"If you would like to log in within Matrix, please send your phone number or bot auth token here.\n" +
					fmt.Sprintf("If you would like to log in outside of Matrix, [click here](%s).\n\n", url) +
					"Logging in outside of Matrix is recommended if you have two-factor authentication enabled, " +
					"because in-Matrix login would save your password in the message history.")
		}
		return evt.Reply(fmt.Sprintf(
			"This bridge instance does not allow logging in inside Matrix.\n\n"+
				"Please visit [the login page](%s) to log in.", url))
	} else if allowMatrixLogin {
		return evt.Reply(
			"This bridge instance does not allow you to log in outside of Matrix.\n\n" +
				"Please send your phone number or bot auth token here to start the login process.")
	}
	return evt.Reply("This bridge instance has been configured to not allow logging in.")
}

func cmdRegister(evt *Event) error {
	if evt.Sender.LoggedIn(evt.Ctx) {
		return evt.Reply("You are already logged in.")
	}
	if len(evt.Args) < 2 {
		return evt.Reply("**Usage:** `$cmdprefix+sp register <phone> <full name>`")
	}

	phone := evt.Args[0]
	var firstName, lastName string
	if len(evt.Args) == 2 {
		firstName, lastName = evt.Args[1], ""
	} else {
		firstName = strings.Join(evt.Args[1:len(evt.Args)-1], " ")
		lastName = evt.Args[len(evt.Args)-1]
	}

	return requestCode(evt, phone, &Continuation{
		Next:   cmdEnterCodeRegister,
		Action: "Register",
		Data: map[string]string{
			"first_name": firstName,
			"last_name":  lastName,
		},
	})
}

// requestCode asks Telegram to send a verification code to the given phone
// number. The continuation is only installed when the request succeeded;
// any failure path clears it so no half-initialized flow can fire later.
func requestCode(evt *Event, phone string, next *Continuation) error {
	ok := false
	defer func() {
		if ok {
			evt.Sender.SetCommandStatus(next)
		} else {
			evt.Sender.SetCommandStatus(nil)
		}
	}()

	if err := evt.Sender.EnsureStarted(evt.Ctx, true); err != nil {
		return fmt.Errorf("start client: %w", err)
	}
	err := evt.Sender.Client().SendCodeRequest(evt.Ctx, phone)
	if err == nil {
		ok = true
		return evt.Reply(fmt.Sprintf("Login code sent to %s. Please send the code here.", phone))
	}

	te, classified := telegram.AsError(err)
	if !classified {
		return fmt.Errorf("request code: %w", err)
	}
	switch te.Kind {
	case telegram.KindAppSignupForbidden:
		return evt.Reply("Your phone number does not allow 3rd party apps to sign in.")
	case telegram.KindPhoneNumberFlood:
		return evt.Reply("Your phone number has been temporarily blocked for flooding. " +
			"The ban is usually applied for around a day.")
	case telegram.KindFloodWait:
		return evt.Reply(fmt.Sprintf(
			"Your phone number has been temporarily blocked for flooding. "+
				"Please wait for %s before trying again.", formatDuration(te.RetryAfter)))
	case telegram.KindPhoneNumberBanned:
		return evt.Reply("Your phone number has been banned from Telegram.")
	case telegram.KindPhoneNumberUnoccupied:
		return evt.Reply("That phone number has not been registered. " +
			"Please register with `$cmdprefix+sp register <phone> <full name>`.")
	default:
		return fmt.Errorf("request code: %w", err)
	}
}

func cmdEnterPhoneOrToken(evt *Event) error {
	if len(evt.Args) == 0 {
		return evt.Reply("**Usage:** `$cmdprefix+sp enter-phone-or-token <phone-or-token>`")
	}
	if !evt.Config().MatrixLoginAllowed() {
		return evt.Reply("This bridge instance does not allow in-Matrix login. " +
			"Please use `$cmdprefix+sp login` to get login instructions.")
	}

	// phone numbers don't contain colons but telegram bot auth tokens do
	arg := evt.Args[0]
	if strings.Index(arg, ":") > 0 {
		return signIn(evt, func(ctx context.Context, client telegram.Client) (*telegram.User, error) {
			return client.SignInBotToken(ctx, arg)
		})
	}
	return requestCode(evt, arg, &Continuation{
		Next:   cmdEnterCode,
		Action: "Login",
	})
}

func cmdEnterCode(evt *Event) error {
	if len(evt.Args) == 0 {
		return evt.Reply("**Usage:** `$cmdprefix+sp enter-code <code>`")
	}
	if !evt.Config().MatrixLoginAllowed() {
		return evt.Reply("This bridge instance does not allow in-Matrix login. " +
			"Please use `$cmdprefix+sp login` to get login instructions.")
	}
	code := evt.Args[0]
	return signIn(evt, func(ctx context.Context, client telegram.Client) (*telegram.User, error) {
		return client.SignInCode(ctx, code)
	})
}

// cmdEnterCodeRegister is reachable only as a continuation of register; it
// has no registry entry.
func cmdEnterCodeRegister(evt *Event) error {
	if len(evt.Args) == 0 {
		return evt.Reply("**Usage:** `$cmdprefix+sp <code>`")
	}
	status := evt.Sender.CommandStatus()
	if status == nil {
		return evt.Reply("Request a registration code first with " +
			"`$cmdprefix+sp register <phone> <full name>`.")
	}
	firstName := status.Data["first_name"]
	lastName := status.Data["last_name"]

	if err := evt.Sender.EnsureStarted(evt.Ctx, true); err != nil {
		return fmt.Errorf("start client: %w", err)
	}
	user, err := evt.Sender.Client().SignUp(evt.Ctx, evt.Args[0], firstName, lastName)
	if err == nil {
		evt.Sender.SetCommandStatus(nil)
		spawnPostLogin(evt, user)
		return evt.Reply("Successfully registered to Telegram.")
	}

	switch {
	case telegram.IsKind(err, telegram.KindPhoneNumberOccupied):
		return evt.Reply("That phone number has already been registered. " +
			"You can log in with `$cmdprefix+sp login`.")
	case telegram.IsKind(err, telegram.KindFirstNameInvalid):
		return evt.Reply("Invalid name. Please set a Matrix displayname before registering.")
	case telegram.IsKind(err, telegram.KindPhoneCodeExpired):
		return evt.Reply("Phone code expired. Try again with `$cmdprefix+sp register <phone> <full name>`.")
	case telegram.IsKind(err, telegram.KindPhoneCodeInvalid):
		return evt.Reply("Invalid phone code.")
	default:
		return fmt.Errorf("sign up: %w", err)
	}
}

func cmdEnterPassword(evt *Event) error {
	if len(evt.Args) == 0 {
		return evt.Reply("**Usage:** `$cmdprefix+sp enter-password <password>`")
	}
	if !evt.Config().MatrixLoginAllowed() {
		return evt.Reply("This bridge instance does not allow in-Matrix login. " +
			"Please use `$cmdprefix+sp login` to get login instructions.")
	}

	// passwords may contain spaces, so rejoin everything the tokenizer split
	password := strings.Join(evt.Args, " ")
	return signIn(evt, func(ctx context.Context, client telegram.Client) (*telegram.User, error) {
		return client.SignInPassword(ctx, password)
	})
}

// signIn runs one remote sign-in attempt and applies the shared outcome
// handling: success commits the login, a two-factor demand moves the flow to
// password entry, named failures get their specific replies.
func signIn(evt *Event, call func(ctx context.Context, client telegram.Client) (*telegram.User, error)) error {
	if err := evt.Sender.EnsureStarted(evt.Ctx, true); err != nil {
		return fmt.Errorf("start client: %w", err)
	}

	user, err := call(evt.Ctx, evt.Sender.Client())
	if err == nil {
		evt.Sender.SetCommandStatus(nil)
		spawnPostLogin(evt, user)
		return evt.Reply(fmt.Sprintf("Successfully logged in as @%s", user.Username))
	}

	switch {
	case telegram.IsKind(err, telegram.KindPhoneCodeExpired):
		return evt.Reply("Phone code expired. Try again with `$cmdprefix+sp login`.")
	case telegram.IsKind(err, telegram.KindPhoneCodeInvalid):
		return evt.Reply("Invalid phone code.")
	case telegram.IsKind(err, telegram.KindPasswordHashInvalid):
		return evt.Reply("Incorrect password.")
	case telegram.IsKind(err, telegram.KindSessionPasswordNeeded):
		evt.Sender.SetCommandStatus(&Continuation{
			Next:   cmdEnterPassword,
			Action: "Login (password entry)",
		})
		return evt.Reply("Your account has two-factor authentication. " +
			"Please send your password here.")
	default:
		return fmt.Errorf("sign in: %w", err)
	}
}

// spawnPostLogin refreshes cached profile data without blocking the reply.
func spawnPostLogin(evt *Event, user *telegram.User) {
	sender := evt.Sender
	logger := *evt.Log
	go func() {
		if err := sender.PostLogin(context.Background(), user); err != nil {
			logger.Error().Err(err).Msg("post-login hook failed")
		}
	}()
}

func cmdLogout(evt *Event) error {
	if err := evt.Sender.LogOut(evt.Ctx); err != nil {
		evt.Log.Error().Err(err).Msg("failed to log out")
		return evt.Reply("Failed to log out.")
	}
	return evt.Reply("Logged out successfully.")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0 seconds"
	}

	var parts []string
	appendPart := func(n int64, unit string) {
		if n == 0 {
			return
		}
		if n == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", unit))
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", n, unit))
		}
	}

	secs := int64(d.Seconds())
	appendPart(secs/86400, "day")
	appendPart(secs%86400/3600, "hour")
	appendPart(secs%3600/60, "minute")
	appendPart(secs%60, "second")
	return strings.Join(parts, " ")
}
