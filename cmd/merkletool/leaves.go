package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/util"
)

const maxLeafLineSize = 1 << 20

// parseLeaf decodes 0x-prefixed hex, otherwise returns the raw bytes.
func parseLeaf(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		b, err := hexutil.Decode("0x" + s[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid hex leaf %q: %w", s, err)
		}
		return b, nil
	}
	return []byte(s), nil
}

// parseEncodedLeaf parses a single leaf flag value and encodes it with enc.
func parseEncodedLeaf(enc util.LeafEncoding, s string) ([]byte, error) {
	value, err := parseLeaf(s)
	if err != nil {
		return nil, err
	}
	return util.EncodeLeaf(enc, value)
}

// readLeaves reads one leaf per line, skipping blank lines.
func readLeaves(r io.Reader) ([][]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLeafLineSize)

	leaves := make([][]byte, 0)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		leaf, err := parseLeaf(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		leaves = append(leaves, leaf)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaves: %w", err)
	}
	return leaves, nil
}

// openInput returns the command's input, where - means stdin.
func openInput(c *cli.Context, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(c.App.Reader), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func readLeavesFrom(c *cli.Context, path string) ([][]byte, error) {
	in, err := openInput(c, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()
	return readLeaves(in)
}
