// Package main — Komut ağacı başlatma.
//
// newRootCommand, tüm CLI komutlarını kurar. Komutlar App container'ı
// üzerinden katmanlara erişir; iş mantığı service'lerde yaşar, komutlar
// sadece argüman çözer ve sonucu basar.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
	"github.com/ihsandara/PemBlle/pkg/i18n"
	"github.com/ihsandara/PemBlle/ws"
)

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "pemblle",
		Short:         "Terminal client for pemblle — anonymous Q&A",
		Long:          "pemblle lets you receive anonymous questions, answer them publicly,\nfollow people, and chat — all from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newRegisterCommand(app),
		newVerifyCommand(app),
		newPasswdCommand(app),
		newWhoamiCommand(app),
		newFeedCommand(app),
		newTellsCommand(app),
		newInboxCommand(app),
		newSentCommand(app),
		newSendCommand(app),
		newAnswerCommand(app),
		newReplyCommand(app),
		newChatsCommand(app),
		newChatCommand(app),
		newFollowCommand(app),
		newUnfollowCommand(app),
		newProfileCommand(app),
		newWatchCommand(app),
		newLangCommand(app),
	)

	return root
}

// ─── Oturum komutları ───

func newLoginCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in with your email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptLine("Password: ")
			if err != nil {
				return err
			}

			sess, err := app.Sessions.SignIn(cmd.Context(), args[0], password)
			if err != nil {
				if errors.Is(err, pkg.ErrUnverifiedAccount) {
					fmt.Println(app.Loc.T("auth.unverifiedAccount"))
					if err := app.Sessions.ResendVerification(cmd.Context(), args[0]); err == nil {
						fmt.Println(app.Loc.T("auth.verificationResent"))
					}
					return nil
				}
				return err
			}

			fmt.Println(app.Loc.TWithParams("auth.loginSuccess",
				map[string]string{"username": sess.Username}))
			return nil
		},
	}
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sessions.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(app.Loc.T("auth.logoutSuccess"))
			return nil
		},
	}
}

func newRegisterCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptLine("Password: ")
			if err != nil {
				return err
			}
			fullName, _ := cmd.Flags().GetString("name")

			user, err := app.Sessions.Register(cmd.Context(), &models.RegisterRequest{
				Username: args[0],
				Email:    args[1],
				Password: password,
				FullName: fullName,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Account created for @%s. Check %s for the verification email.\n",
				user.Username, args[1])
			return nil
		},
	}
	cmd.Flags().String("name", "", "full display name")
	return cmd
}

func newVerifyCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify your account with the emailed token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sessions.VerifyEmail(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Account verified. You can sign in now.")
			return nil
		},
	}
	return cmd
}

func newPasswdCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := promptLine("Current password: ")
			if err != nil {
				return err
			}
			next, err := promptLine("New password: ")
			if err != nil {
				return err
			}
			if err := app.Sessions.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			fmt.Println("Password changed.")
			return nil
		},
	}
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := app.Sessions.Current()
			if sess == nil {
				fmt.Println(app.Loc.T("auth.noSession"))
				return nil
			}
			fmt.Printf("@%s (%s)\n", sess.Username, sess.UserID)
			if !sess.ExpiresAt.IsZero() {
				fmt.Printf("session expires %s\n", fmtTime(sess.ExpiresAt))
			}
			return nil
		},
	}
}

// ─── Feed komutları ───

func newFeedCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Browse the public feed of answered tells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, _ := cmd.Flags().GetInt("pages")
			feed := app.Services.Feed.Feed()

			page, err := feed.LoadFirstPage(cmd.Context())
			if err != nil {
				return err
			}
			printTells(app.Loc, page.Items)

			for i := 1; i < pages && page.HasMore; i++ {
				page, err = feed.LoadNextPage(cmd.Context())
				if err != nil {
					return err
				}
				printTells(app.Loc, page.Items)
			}

			if !feed.HasMore() {
				fmt.Println(app.Loc.T("feed.endOfFeed"))
			}
			return nil
		},
	}
	cmd.Flags().Int("pages", 1, "number of pages to load")
	return cmd
}

func newTellsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tells <username>",
		Short: "Show a user's answered tells",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tells, err := app.Services.Feed.UserTells(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTells(app.Loc, tells)
			return nil
		},
	}
}

// ─── Gelen kutusu komutları ───

func newInboxCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "Show tells sent to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(app); err != nil {
				return err
			}
			tells, err := app.Services.Feed.RefreshInbox(cmd.Context())
			if err != nil {
				return err
			}
			if badge, err := app.Services.Feed.RefreshBadge(cmd.Context()); err == nil && badge > 0 {
				fmt.Println(app.Loc.TWithParams("tell.unansweredBadge",
					map[string]string{"count": strconv.FormatInt(badge, 10)}))
			}
			printTells(app.Loc, tells)
			return nil
		},
	}
}

func newSentCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sent",
		Short: "Show tells you have sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(app); err != nil {
				return err
			}
			tells, err := app.Services.Feed.Sent(cmd.Context())
			if err != nil {
				return err
			}
			printTells(app.Loc, tells)
			return nil
		},
	}
}

func newSendCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <username> <message...>",
		Short: "Send a tell to a user",
		Long:  "Send a tell to a user. Works without signing in — unsigned tells are always anonymous.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			anonymous, _ := cmd.Flags().GetBool("anonymous")

			receiver, err := app.Services.User.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			content := strings.Join(args[1:], " ")
			if _, err := app.Services.Feed.SendTell(cmd.Context(), receiver.ID, content, anonymous); err != nil {
				return err
			}
			fmt.Println(app.Loc.T("tell.sent"))
			return nil
		},
	}
	cmd.Flags().BoolP("anonymous", "a", true, "hide your identity from the receiver")
	return cmd
}

func newAnswerCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "answer <tell-id> <message...>",
		Short: "Answer a tell from your inbox",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(app); err != nil {
				return err
			}
			// Gelen kutusu lokalde olmalı — answer lokal listede çalışır
			if len(app.Services.Feed.Inbox()) == 0 {
				if _, err := app.Services.Feed.RefreshInbox(cmd.Context()); err != nil {
					return err
				}
			}
			content := strings.Join(args[1:], " ")
			if err := app.Services.Feed.AnswerTell(cmd.Context(), args[0], content); err != nil {
				return err
			}
			fmt.Println(app.Loc.T("tell.answered"))
			return nil
		},
	}
}

func newReplyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reply <tell-id> <answer-id> <message...>",
		Short: "Reply under an answer",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(app); err != nil {
				return err
			}
			if len(app.Services.Feed.Inbox()) == 0 {
				if _, err := app.Services.Feed.RefreshInbox(cmd.Context()); err != nil {
					return err
				}
			}
			content := strings.Join(args[2:], " ")
			if err := app.Services.Feed.ReplyToAnswer(cmd.Context(), args[0], args[1], content); err != nil {
				return err
			}
			fmt.Println(app.Loc.T("tell.replied"))
			return nil
		},
	}
}

// ─── Sohbet komutları ───

func newChatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List your chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(app)
			if err != nil {
				return err
			}
			chats, err := app.Services.Chat.RefreshChats(cmd.Context())
			if err != nil {
				return err
			}
			if total, err := app.Services.Chat.RefreshUnreadTotal(cmd.Context()); err == nil && total > 0 {
				fmt.Println(app.Loc.TWithParams("chat.unreadBadge",
					map[string]string{"count": strconv.FormatInt(total, 10)}))
			}
			if len(chats) == 0 {
				fmt.Println(app.Loc.T("chat.empty"))
				return nil
			}
			for i := range chats {
				printChat(app.Loc, &chats[i], sess.UserID)
			}
			return nil
		},
	}
}

func newChatCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <username> [message...]",
		Short: "Open a chat; optionally send a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(app)
			if err != nil {
				return err
			}

			other, err := app.Services.User.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			chat, err := app.Services.Chat.StartChatWith(cmd.Context(), other.ID)
			if err != nil {
				return err
			}

			msgs, err := app.Services.Chat.OpenThread(cmd.Context(), chat.ID)
			if err != nil {
				return err
			}
			defer app.Services.Chat.CloseThread()

			if len(args) > 1 {
				content := strings.Join(args[1:], " ")
				if err := app.Services.Chat.SendMessage(cmd.Context(), chat.ID, content); err != nil {
					return err
				}
				msgs = app.Services.Chat.Messages()
			}

			if len(msgs) == 0 {
				fmt.Println(app.Loc.T("chat.empty"))
				return nil
			}
			for i := range msgs {
				printMessage(&msgs[i], sess.UserID)
			}
			return nil
		},
	}
}

// ─── Takip komutları ───

func newFollowCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "follow <username>",
		Short: "Follow a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(app); err != nil {
				return err
			}
			anonymous, _ := cmd.Flags().GetBool("anonymous")

			user, err := app.Services.User.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.Services.User.Follow(cmd.Context(), user.ID, anonymous); err != nil {
				return err
			}
			fmt.Println(app.Loc.TWithParams("follow.followed",
				map[string]string{"username": user.Username}))
			return nil
		},
	}
	cmd.Flags().BoolP("anonymous", "a", false, "follow without revealing your identity")
	return cmd
}

func newUnfollowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow <username>",
		Short: "Unfollow a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(app); err != nil {
				return err
			}
			user, err := app.Services.User.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.Services.User.Unfollow(cmd.Context(), user.ID); err != nil {
				return err
			}
			fmt.Println(app.Loc.TWithParams("follow.unfollowed",
				map[string]string{"username": user.Username}))
			return nil
		},
	}
}

func newProfileCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <username>",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Services.User.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("@%s", user.Username)
			if user.FullName != "" {
				fmt.Printf("  (%s)", user.FullName)
			}
			fmt.Println()
			if user.Bio != "" {
				fmt.Println(user.Bio)
			}

			if counts, err := app.Services.User.FollowCounts(cmd.Context(), user.ID); err == nil {
				fmt.Printf("%d followers · %d following\n", counts.FollowersCount, counts.FollowingCount)
			}
			return nil
		},
	}
}

// ─── Watch ───

func newWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stay connected and print live events as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(app)
			if err != nil {
				return err
			}

			// Gelen kutusu ve sohbetler lokalde olsun ki live event'ler
			// boş listelere değil gerçek state'e işlesin
			if _, err := app.Services.Feed.RefreshInbox(cmd.Context()); err != nil {
				return err
			}
			if _, err := app.Services.Chat.RefreshChats(cmd.Context()); err != nil {
				return err
			}

			bindWatchOutput(app)

			if err := app.Channel.Connect(cmd.Context(), sess.UserID); err != nil {
				return err
			}
			fmt.Printf("watching as @%s — press Ctrl-C to stop\n", sess.Username)

			// Graceful shutdown: SIGINT/SIGTERM bekle, kanalı kapat
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop

			fmt.Println("\nstopping...")
			return app.Channel.Close()
		},
	}
}

// bindWatchOutput, live event'leri terminale basan abonelikleri ekler.
// Service abonelikleri (state güncelleme) initLive'da zaten bağlıdır;
// bunlar sadece görünür bildirimlerdir.
func bindWatchOutput(app *App) {
	app.Dispatcher.Subscribe(ws.EventNewTell, func(ev ws.Event) {
		fmt.Println("• " + app.Loc.T("tell.newTell"))
	})
	app.Dispatcher.Subscribe(ws.EventNewMessage, func(ev ws.Event) {
		p, err := ev.DecodeNewMessage()
		if err != nil {
			return
		}
		who := p.Message.SenderID
		if p.Message.Sender != nil {
			who = "@" + p.Message.Sender.Username
		}
		fmt.Println("• " + app.Loc.TWithParams("chat.newMessage",
			map[string]string{"user": who}))
	})
	app.Dispatcher.Subscribe(ws.EventTellAnswered, func(ev ws.Event) {
		p, err := ev.DecodeTellAnswered()
		if err != nil {
			return
		}
		fmt.Printf("• your tell %s was answered: %s\n", p.Tell.ID, truncate(p.Answer.Content, 60))
	})
	app.Dispatcher.Subscribe(ws.EventNewReply, func(ev ws.Event) {
		p, err := ev.DecodeNewReply()
		if err != nil {
			return
		}
		fmt.Printf("• new reply on tell %s: %s\n", p.TellID, truncate(p.Reply.Content, 60))
	})
}

// ─── Ayarlar ───

// newLangCommand, arayüz dilini gösterir veya kalıcı olarak değiştirir.
// Seçim lokal settings deposuna yazılır; sonraki çalıştırmalarda
// PEMBLLE_LANG/LANG ayarlanmadığı sürece bu tercih kullanılır.
func newLangCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [code]",
		Short: "Show or set the interface language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Println(app.Loc.Lang())
				return nil
			}

			code := strings.ToLower(strings.TrimSpace(args[0]))
			if !i18n.IsSupported(code) {
				return fmt.Errorf("%w: unsupported language %q (available: %s)",
					pkg.ErrValidation, code, strings.Join(i18n.SupportedLanguages, ", "))
			}

			if err := app.DB.SetSetting(cmd.Context(), settingLang, code); err != nil {
				return err
			}
			app.Loc = i18n.NewLocalizer(code)
			fmt.Println(app.Loc.T("lang.updated"))
			return nil
		},
	}
}

// ─── Yardımcılar ───

// requireSession, aktif oturumu döner; yoksa ErrNoSession.
func requireSession(app *App) (*models.Session, error) {
	sess := app.Sessions.Current()
	if sess == nil {
		return nil, pkg.ErrNoSession
	}
	return sess, nil
}

// promptLine, stdin'den tek satır okur (prompt stderr'e basılır ki
// stdout pipe edildiğinde karışmasın).
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
