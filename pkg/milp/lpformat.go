package milp

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// termsPerLine keeps rows readable and within the line limits of LP readers
const termsPerLine = 8

// LPName returns the variable or row name as written to LP files.
// Characters outside the LP name alphabet are replaced with '_'.
func LPName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			sb.WriteRune(r)
		case r >= '0' && r <= '9', r == '.':
			if i == 0 {
				sb.WriteRune('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// WriteLP writes the model in CPLEX LP format.
// Usage:
//
//	f, _ := os.Create("model.lp")
//	defer f.Close()
//	err := milp.WriteLP(f, model)
func WriteLP(w io.Writer, m *Model) error {
	if len(m.vars) == 0 {
		return fmt.Errorf("model %s has no variables", m.name)
	}
	names, err := lpVarNames(m)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\\ Model %s\n", m.name)

	obj := m.objective
	if obj.Sense == Minimize {
		bw.WriteString("Minimize\n")
	} else {
		bw.WriteString("Maximize\n")
	}
	bw.WriteString(" obj:")
	if len(obj.Terms) == 0 {
		// LP readers reject an objective without terms
		fmt.Fprintf(bw, " 0 %s", names[0])
	}
	// The objective offset is not written; readers recompute it from the values
	writeTerms(bw, obj.Terms, names)
	bw.WriteString("\n")

	bw.WriteString("Subject To\n")
	rowNames := make(map[string]bool, len(m.constraints))
	for i, c := range m.constraints {
		name := LPName(c.Name)
		if rowNames[name] {
			name = fmt.Sprintf("%s_r%d", name, i)
		}
		rowNames[name] = true

		fmt.Fprintf(bw, " %s:", name)
		if len(c.Terms) == 0 {
			fmt.Fprintf(bw, " 0 %s", names[0])
		}
		writeTerms(bw, c.Terms, names)
		fmt.Fprintf(bw, " %s %d\n", c.Op, c.RHS)
	}

	bw.WriteString("Bounds\n")
	var binaries, generals []string
	for _, v := range m.vars {
		if v.IsBinary() {
			binaries = append(binaries, names[v.ID])
			continue
		}
		fmt.Fprintf(bw, " %d <= %s <= %d\n", v.Lower, names[v.ID], v.Upper)
		if v.Integer {
			generals = append(generals, names[v.ID])
		}
	}
	if len(generals) > 0 {
		bw.WriteString("General\n")
		writeNameList(bw, generals)
	}
	if len(binaries) > 0 {
		bw.WriteString("Binary\n")
		writeNameList(bw, binaries)
	}
	bw.WriteString("End\n")

	return bw.Flush()
}

// lpVarNames returns the LP name of every variable, indexed by VarID
func lpVarNames(m *Model) ([]string, error) {
	names := make([]string, len(m.vars))
	seen := make(map[string]VarID, len(m.vars))
	for _, v := range m.vars {
		name := LPName(v.Name)
		if other, exists := seen[name]; exists {
			return nil, fmt.Errorf("variables %s and %s share LP name %s", m.vars[other].Name, v.Name, name)
		}
		seen[name] = v.ID
		names[v.ID] = name
	}
	return names, nil
}

// LPVarIndex maps LP variable names back to variable ids
func LPVarIndex(m *Model) (map[string]VarID, error) {
	names, err := lpVarNames(m)
	if err != nil {
		return nil, err
	}
	index := make(map[string]VarID, len(names))
	for id, name := range names {
		index[name] = VarID(id)
	}
	return index, nil
}

func writeTerms(bw *bufio.Writer, terms []Term, names []string) {
	for i, t := range terms {
		if i > 0 && i%termsPerLine == 0 {
			bw.WriteString("\n   ")
		}
		fmt.Fprintf(bw, " %+d %s", t.Coeff, names[t.Var])
	}
}

func writeNameList(bw *bufio.Writer, names []string) {
	for i := 0; i < len(names); i += termsPerLine {
		end := min(i+termsPerLine, len(names))
		bw.WriteString(" " + strings.Join(names[i:end], " ") + "\n")
	}
}
