// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Command pexpr parses expressions and
// prints their canonical text, hash, and encoding.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/SnellerInc/pexpr/binder"
	"github.com/SnellerInc/pexpr/expr"
	"github.com/SnellerInc/pexpr/parser"
	"github.com/SnellerInc/pexpr/plancache"
)

var (
	dashv      bool
	dashh      bool
	dashc      string
	dashbind   string
	dashformat string
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.BoolVar(&dashh, "h", false, "show usage help")
	flag.StringVar(&dashc, "c", "", "plan cache config file (yaml)")
	flag.StringVar(&dashbind, "bind", "", "bind lambdas before printing (lambda or arrow)")
	flag.StringVar(&dashformat, "format", "text", "encoding to print (text, ion, or binary)")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

type options struct {
	bind   bool
	mode   binder.Mode
	format string
	cache  *plancache.Cache
}

func encode(n expr.Node, format string) (string, error) {
	switch format {
	case "text":
		return expr.ToIonText(n)
	case "ion":
		buf, err := expr.MarshalIon(n)
		return hex.EncodeToString(buf), err
	case "binary":
		buf, err := expr.MarshalBinary(n)
		return hex.EncodeToString(buf), err
	}
	return "", fmt.Errorf("unknown format %q", format)
}

// verify checks that n survives both encodings
func verify(n expr.Node) error {
	buf, err := expr.MarshalBinary(n)
	if err != nil {
		return err
	}
	out, err := expr.UnmarshalBinary(buf)
	if err != nil {
		return err
	}
	if !expr.Equal(n, out) {
		return fmt.Errorf("binary round-trip produced %s", expr.ToString(out))
	}
	buf, err = expr.MarshalIon(n)
	if err != nil {
		return err
	}
	out, err = expr.UnmarshalIon(buf)
	if err != nil {
		return err
	}
	if !expr.Equal(n, out) {
		return fmt.Errorf("ion round-trip produced %s", expr.ToString(out))
	}
	return nil
}

func process(w io.Writer, text string, opts *options) error {
	n, err := parser.Parse(text)
	if err != nil {
		return err
	}
	if opts.bind {
		n, err = binder.Bind(n, opts.mode)
		if err != nil {
			return err
		}
	}
	if err := verify(n); err != nil {
		return fmt.Errorf("%s: %w", expr.ToString(n), err)
	}
	enc, err := encode(n, opts.format)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "expr:   %s\n", expr.ToString(n))
	fmt.Fprintf(w, "class:  %s\n", n.Class())
	fmt.Fprintf(w, "hash:   %016x\n", expr.Hash(n))
	fmt.Fprintf(w, "%-7s %s\n", opts.format+":", enc)
	if opts.cache == nil {
		return nil
	}
	_, hit, err := opts.cache.Get(n)
	if err != nil {
		return err
	}
	if hit {
		fmt.Fprintf(w, "cache:  hit %s\n", opts.cache.Key(n))
		return nil
	}
	key, err := opts.cache.Put(n)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "cache:  stored %s\n", key)
	return nil
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 || dashh {
		fmt.Fprintf(os.Stderr, "usage:\n")
		fmt.Fprintf(os.Stderr, "    %s [-c <config.yaml>] [-bind lambda|arrow] [-format text|ion|binary] <expr>...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "        print the canonical text, hash, and encoding of each expression\n")
		fmt.Fprintf(os.Stderr, "flag usage:\n")
		flag.Usage()
		os.Exit(1)
	}

	opts := &options{format: dashformat}
	switch dashformat {
	case "text", "ion", "binary":
	default:
		exitf("unknown format %q\n", dashformat)
	}
	if dashbind != "" {
		mode, ok := binder.ParseMode(dashbind)
		if !ok {
			exitf("unknown bind mode %q\n", dashbind)
		}
		opts.bind, opts.mode = true, mode
	}
	if dashc != "" {
		conf, err := plancache.LoadConfig(dashc)
		if err != nil {
			exitf("loading config: %s\n", err)
		}
		if dashv {
			conf.Logf = logf
		}
		opts.cache = conf.Open()
	}

	failed := false
	for i, text := range args {
		if i > 0 {
			fmt.Println()
		}
		if err := process(os.Stdout, text, opts); err != nil {
			logf("%s: %s", text, err)
			failed = true
		}
	}
	if opts.cache != nil && dashv {
		st := opts.cache.Stats()
		logf("cache: %d hits, %d misses, %d collisions", st.Hits, st.Misses, st.Collisions)
	}
	if failed {
		os.Exit(1)
	}
}
