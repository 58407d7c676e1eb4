package ndp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Parse reads an instance in the whitespace .ndp format from r, validates
// it, and returns it. Any structural defect is reported as a wrapped
// ErrMalformedInstance.
func Parse(r io.Reader) (*Instance, error) {
	tokens := bufio.NewScanner(r)
	tokens.Split(bufio.ScanWords)

	nodes, err := nextInt(tokens, "node count")
	if err != nil {
		return nil, err
	}
	numArcs, err := nextInt(tokens, "arc count")
	if err != nil {
		return nil, err
	}
	numCommodities, err := nextInt(tokens, "commodity count")
	if err != nil {
		return nil, err
	}
	numScenarios, err := nextInt(tokens, "scenario count")
	if err != nil {
		return nil, err
	}
	if numArcs < 0 || numCommodities < 0 || numScenarios < 0 {
		return nil, fmt.Errorf("%w: negative size in header", ErrMalformedInstance)
	}

	inst := &Instance{
		NumNodes:    nodes,
		Arcs:        make([]Arc, numArcs),
		Commodities: make([]Commodity, numCommodities),
		Scenarios:   make([]Scenario, numScenarios),
	}

	for i := range inst.Arcs {
		what := fmt.Sprintf("arc %d", i)
		a := &inst.Arcs[i]
		if a.From, err = nextInt(tokens, what); err != nil {
			return nil, err
		}
		if a.To, err = nextInt(tokens, what); err != nil {
			return nil, err
		}
		if a.FlowCost, err = nextFloat(tokens, what); err != nil {
			return nil, err
		}
		if a.Capacity, err = nextFloat(tokens, what); err != nil {
			return nil, err
		}
		if a.FixedCost, err = nextFloat(tokens, what); err != nil {
			return nil, err
		}
	}

	for i := range inst.Commodities {
		what := fmt.Sprintf("commodity %d", i)
		c := &inst.Commodities[i]
		if c.From, err = nextInt(tokens, what); err != nil {
			return nil, err
		}
		if c.To, err = nextInt(tokens, what); err != nil {
			return nil, err
		}
	}

	for i := range inst.Scenarios {
		what := fmt.Sprintf("scenario %d", i)
		s := &inst.Scenarios[i]
		if s.Probability, err = nextFloat(tokens, what); err != nil {
			return nil, err
		}
		s.Demands = make([]float64, numCommodities)
		for k := range s.Demands {
			if s.Demands[k], err = nextFloat(tokens, what); err != nil {
				return nil, err
			}
		}
	}

	if err = inst.Validate(); err != nil {
		return nil, err
	}

	return inst, nil
}

// ParseFile opens path and delegates to Parse.
func ParseFile(path string) (*Instance, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ndp: open instance: %w", err)
	}
	defer fh.Close()

	return Parse(fh)
}

func nextToken(tokens *bufio.Scanner, what string) (string, error) {
	if !tokens.Scan() {
		if err := tokens.Err(); err != nil {
			return "", fmt.Errorf("ndp: read %s: %w", what, err)
		}

		return "", fmt.Errorf("%w: input truncated at %s", ErrMalformedInstance, what)
	}

	return tokens.Text(), nil
}

func nextInt(tokens *bufio.Scanner, what string) (int, error) {
	tok, err := nextToken(tokens, what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: bad integer %q", ErrMalformedInstance, what, tok)
	}

	return v, nil
}

func nextFloat(tokens *bufio.Scanner, what string) (float64, error) {
	tok, err := nextToken(tokens, what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: bad number %q", ErrMalformedInstance, what, tok)
	}

	return v, nil
}
