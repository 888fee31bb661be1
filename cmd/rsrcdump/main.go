// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	rsrc "github.com/saferwall/rsrcfork"
)

var (
	verbose     bool
	listOnly    bool
	wantSounds  bool
	wantStrings bool
	wantCode    bool
	outDir      string
)

func isDirectory(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func decompressionFlags() uint64 {
	if verbose {
		return rsrc.DecompressVerbose
	}
	return 0
}

func saveOutput(base string, typ uint32, id int16, ext string, data []byte) {
	name := fmt.Sprintf("%s_%s_%d.%s", base, rsrc.TypeString(typ), id, ext)
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("error writing %s: %v", path, err)
		return
	}
	fmt.Printf("... %s\n", path)
}

func dumpFork(filename string) {
	log.Printf("Processing filename %s", filename)

	f, err := rsrc.New(filename, &rsrc.Options{})
	if err != nil {
		log.Printf("Error while opening file: %s, reason: %v", filename, err)
		return
	}
	defer f.Close()

	base := filepath.Base(filename)
	for _, rid := range f.AllResources() {
		res, err := f.GetResource(rid.Type, rid.ID, decompressionFlags())
		if err != nil {
			log.Printf("%s:%d: %v", rsrc.TypeString(rid.Type), rid.ID, err)
			continue
		}
		if listOnly {
			fmt.Printf("%s %6d %6d bytes  %q\n", rsrc.TypeString(res.Type),
				res.ID, len(res.Data), res.Name)
			continue
		}

		switch {
		case wantSounds && res.Type == rsrc.TypeSND:
			wav, err := f.DecodeSound(res.Data)
			if err != nil {
				log.Printf("snd %d: %v", res.ID, err)
				continue
			}
			saveOutput(base, res.Type, res.ID, "wav", wav)
		case wantSounds && res.Type == rsrc.TypeCSND:
			wav, err := f.DecodeCompressedSound(res.Data)
			if err != nil {
				log.Printf("csnd %d: %v", res.ID, err)
				continue
			}
			saveOutput(base, res.Type, res.ID, "wav", wav)
		case wantSounds && res.Type == rsrc.TypeTune:
			midi, err := rsrc.DecodeTune(res.Data)
			if err != nil {
				log.Printf("Tune %d: %v", res.ID, err)
				continue
			}
			saveOutput(base, res.Type, res.ID, "midi", midi)
		case wantStrings && res.Type == rsrc.TypeSTR:
			decoded, err := rsrc.DecodeString(res.Data)
			if err != nil {
				log.Printf("STR %d: %v", res.ID, err)
				continue
			}
			fmt.Printf("STR %d: %s\n", res.ID, decoded.Str)
		case wantStrings && res.Type == rsrc.TypeSTRN:
			decoded, err := rsrc.DecodeStringSequence(res.Data)
			if err != nil {
				log.Printf("STR# %d: %v", res.ID, err)
				continue
			}
			for i, s := range decoded.Strs {
				fmt.Printf("STR# %d[%d]: %s\n", res.ID, i, s)
			}
		case wantStrings && res.Type == rsrc.TypeTEXT:
			fmt.Printf("TEXT %d: %s\n", res.ID, rsrc.DecodeText(res.Data))
		case wantCode && res.Type == rsrc.TypeCODE && res.ID != 0:
			text, err := f.DisassembleCode(res)
			if err != nil {
				log.Printf("CODE %d: %v", res.ID, err)
				continue
			}
			saveOutput(base, res.Type, res.ID, "s", []byte(text))
		case wantCode && res.Type == rsrc.TypeDCMP:
			text, err := rsrc.DecodeDcmp(res.Data)
			if err != nil {
				log.Printf("dcmp %d: %v", res.ID, err)
				continue
			}
			saveOutput(base, res.Type, res.ID, "s", []byte(text))
		case wantCode && rsrc.IsInline68KType(res.Type):
			saveOutput(base, res.Type, res.ID, "s",
				[]byte(rsrc.DecodeInline68KCode(res.Data)))
		}
	}
}

func run(cmd *cobra.Command, args []string) {
	filePath := args[0]

	if !isDirectory(filePath) {
		dumpFork(filePath)
		return
	}

	// filePath points to a directory; walk recursively through all files.
	var fileList []string
	filepath.Walk(filePath, func(path string, f os.FileInfo, err error) error {
		if err == nil && !isDirectory(path) {
			fileList = append(fileList, path)
		}
		return nil
	})
	for _, file := range fileList {
		dumpFork(file)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "rsrcdump",
		Short: "A classic Mac resource fork parser",
		Long:  "A resource-fork parser and decoder built by Saferwall",
		Run: func(cmd *cobra.Command, args []string) {
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Long:  "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("You are using version %s\n", rsrc.Version)
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Dumps the fork",
		Long:  "Dumps the resources of a classic Mac resource fork",
		Args:  cobra.MinimumNArgs(1),
		Run:   run,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	dumpCmd.Flags().BoolVarP(&listOnly, "list", "l", false, "List resources without decoding")
	dumpCmd.Flags().BoolVarP(&wantSounds, "sounds", "s", false, "Decode snd/csnd/Tune resources")
	dumpCmd.Flags().BoolVarP(&wantStrings, "strings", "t", false, "Decode STR/STR#/TEXT resources")
	dumpCmd.Flags().BoolVarP(&wantCode, "code", "c", false, "Disassemble CODE/dcmp resources")
	dumpCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory for decoded files")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
