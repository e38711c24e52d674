// Command vcalcadm manages the vcalc client database.
//
//	vcalcadm [-c config] [-d path] add <login>      prompt for a secret and add or replace login
//	vcalcadm [-c config] [-d path] remove <login>   delete login
//	vcalcadm [-c config] [-d path] list             print every login
//
// Without -d the database path is resolved like the server does it:
// client_db_path in the JSON file given by -c wins over VCALC_CLIENT_DB from
// the environment or .env, which wins over /etc/vcalc.conf. The running
// server reads the file at startup only.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/vcalc/internal/client/input"
	"github.com/dmitrijs2005/vcalc/internal/common"
	"github.com/dmitrijs2005/vcalc/internal/server/config"
	"github.com/dmitrijs2005/vcalc/internal/server/credentials"
)

var errUsage = errors.New("usage: vcalcadm [-c config] [-d path] add <login> | remove <login> | list")

func main() {

	if err := run(context.Background(), os.Args[1:], bufio.NewReader(os.Stdin), os.Stdout, os.Stderr); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context, args []string, in *bufio.Reader, out, prompts io.Writer) error {
	var path, configPath string
	fs := flag.NewFlagSet("vcalcadm", flag.ContinueOnError)
	fs.SetOutput(prompts)
	fs.StringVar(&configPath, "c", "", "JSON config file")
	fs.StringVar(&path, "d", "", "client database file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if path == "" {
		var err error
		if path, err = config.ClientDBPath(configPath); err != nil {
			return err
		}
	}

	store := credentials.NewFileStore(path)
	if err := store.Load(ctx); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cmd := fs.Args()
	if len(cmd) == 0 {
		return errUsage
	}

	switch {
	case cmd[0] == "add" && len(cmd) == 2:
		secret, err := input.GetSecret(in, "Secret for "+cmd[1], prompts)
		if err != nil {
			return fmt.Errorf("read secret: %w", err)
		}
		verb := "added"
		if store.Exists(ctx, cmd[1]) {
			verb = "updated"
		}
		if err := store.Add(ctx, cmd[1], secret); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", verb, cmd[1])

	case cmd[0] == "remove" && len(cmd) == 2:
		if err := store.Remove(ctx, cmd[1]); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%s: %w", cmd[1], err)
			}
			return err
		}
		fmt.Fprintf(out, "removed %s\n", cmd[1])

	case cmd[0] == "list" && len(cmd) == 1:
		for _, login := range store.List(ctx) {
			fmt.Fprintln(out, login)
		}

	default:
		return errUsage
	}
	return nil
}
