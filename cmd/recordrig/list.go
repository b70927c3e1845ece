package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/wagiedev/recordrig-go"
)

func initialList(cfg recordrig.Session, path string, log *slog.Logger) (recordrig.TrialList, error) {
	if path == "" {
		return recordrig.GenerateTrialList(cfg, nil, recordrig.WithLogger(log))
	}

	list, err := recordrig.LoadTrialList(path)
	if err != nil {
		return recordrig.TrialList{}, err
	}

	if err := list.Validate(cfg.Levels, cfg.Feeders); err != nil {
		return recordrig.TrialList{}, fmt.Errorf("trial list %s: %w", path, err)
	}

	return list, nil
}

// chooseList lets the experimenter reshuffle, regenerate, load or save the
// list until they accept it.
func chooseList(
	in *bufio.Reader,
	out io.Writer,
	cfg recordrig.Session,
	list recordrig.TrialList,
	log *slog.Logger,
) (recordrig.TrialList, error) {
	for {
		printList(out, list)
		fmt.Fprint(out, "[a]ccept, [r]eshuffle, [g]enerate, [l]oad <path>, [s]ave <path>, [q]uit: ")

		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return recordrig.TrialList{}, errors.New("no trial list accepted")
			}

			return recordrig.TrialList{}, fmt.Errorf("read choice: %w", err)
		}

		action, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(action) {
		case "a", "":
			return list, nil
		case "r":
			recordrig.ReshuffleTrialList(&list, nil, recordrig.WithLogger(log))
		case "g":
			fresh, err := recordrig.GenerateTrialList(cfg, nil, recordrig.WithLogger(log))
			if err != nil {
				return recordrig.TrialList{}, err
			}

			list = fresh
		case "l":
			loaded, err := initialList(cfg, arg, log)
			if err != nil {
				fmt.Fprintf(out, "Could not load %q: %v\n", arg, err)

				continue
			}

			list = loaded
		case "s":
			if arg == "" {
				fmt.Fprintln(out, "Save needs a path.")

				continue
			}

			if err := recordrig.SaveTrialList(arg, list); err != nil {
				fmt.Fprintf(out, "Could not save %q: %v\n", arg, err)

				continue
			}

			fmt.Fprintf(out, "Saved to %s\n", arg)
		case "q":
			return recordrig.TrialList{}, errors.New("quit before session start")
		default:
			fmt.Fprintf(out, "Unknown choice %q.\n", action)
		}
	}
}

func printList(out io.Writer, list recordrig.TrialList) {
	fmt.Fprintf(out, "\nTrial list (%d trials)\n", list.Len())
	fmt.Fprintf(out, "  feeders: %v\n", list.Feeders)
	fmt.Fprintf(out, "  levels:  %v\n", list.Levels)
}
