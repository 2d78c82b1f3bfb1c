package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"dbmodel/internal/config"
	"dbmodel/internal/errors"
	"dbmodel/internal/model"
	"dbmodel/internal/repository"
	"dbmodel/internal/store"
)

// usersCmd represents the users command
var usersCmd = &cobra.Command{
	Use:   "users <file>",
	Short: "Store the users of a JSON file",
	Long: `Read a JSON array of authentication users, apply default permissions
where none are given, stamp identifiers and timestamps, and store them.
Users that already exist are updated with the fields the file gives for
them; stored values of omitted fields are kept.

Example:
  seed users testdata/users.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := loadUsers(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		docStore, err := store.Open(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer docStore.Close()

		created, updated, err := seedUsers(ctx, repository.NewUserRepository(docStore), users)
		if err != nil {
			return err
		}
		log.Info().
			Int("created", created).
			Int("updated", updated).
			Int("total", created+updated).
			Msg("seed completed")
		return nil
	},
}

var showType string

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the create snapshots of a JSON file without storing them",
	Long: `Hydrate the records of a JSON file, either one object or an array, with
defaults and print their create snapshots. The record type is chosen with
--type among the registered ones.

Example:
  seed show testdata/users.json --type authentication-user`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := model.Lookup(showType)
		if err != nil {
			return fmt.Errorf("%w (registered: %s)", err, strings.Join(model.Types(), ", "))
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		var records []model.Model
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
			records, err = h.HydrateArray(data)
		} else {
			var m model.Model
			m, err = h.Hydrate(data)
			records = []model.Model{m}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		entries := make([]model.Entry, len(records))
		for i, m := range records {
			entries[i] = model.EntryOf(model.CreateEntry(m, model.CreateOptions{}))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	},
}

func init() {
	showCmd.Flags().StringVar(&showType, "type", model.AuthenticationUserType, "record type of the file")
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(showCmd)
}

// seedUser is a user read from a seed file together with the keys the file
// gives for it. Updates of existing users are limited to those keys so
// defaults never replace stored values.
type seedUser struct {
	user   *model.AuthenticationUser
	fields []string
}

// loadUsers hydrates a JSON array of users with defaults.
func loadUsers(path string) ([]seedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	users, err := model.AuthenticationUsers.FromJSONArrayString(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var docs []map[string]json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, errors.Malformed(model.AuthenticationUserType, err))
	}

	out := make([]seedUser, len(users))
	for i, u := range users {
		out[i] = seedUser{user: u, fields: slices.Sorted(maps.Keys(docs[i]))}
	}
	return out, nil
}

// seedUsers creates each user, updating the ones that already exist.
func seedUsers(ctx context.Context, repo repository.UserRepository, users []seedUser) (created int, updated int, err error) {
	for _, su := range users {
		u := su.user
		_, err := repo.Create(ctx, u)
		if err == nil {
			created++
			log.Debug().Str("email", u.Email).Msg("user created")
			continue
		}
		if !errors.Is(err, errors.ErrRecordExists) {
			return created, updated, fmt.Errorf("create %s: %w", u.Email, err)
		}

		if _, err := repo.Update(ctx, u, model.UpdateOptions{WhiteList: su.fields}); err != nil {
			return created, updated, fmt.Errorf("update %s: %w", u.Email, err)
		}
		updated++
		log.Debug().Str("email", u.Email).Strs("fields", su.fields).Msg("user updated")
	}
	return created, updated, nil
}
