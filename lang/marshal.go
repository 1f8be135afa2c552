package lang

import "encoding/json"

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ToMap converts the program to a native Go map structure.
// Every node becomes a map with at least "type" and "span" keys.
func (p *Program) ToMap() map[string]any {
	items := make([]any, len(p.Items))
	for i, n := range p.Items {
		items[i] = NodeToMap(n)
	}

	return map[string]any{
		"type":  "Program",
		"items": items,
	}
}

// NodeToMap converts a single node to a native Go map structure.
func NodeToMap(n Node) map[string]any {
	result := map[string]any{
		"type": nodeTypeName(n),
		"span": n.Span().String(),
	}

	switch n := n.(type) {
	case *Number:
		result["value"] = n.Value
		result["text"] = n.Text

	case *Variable:
		result["name"] = n.Name

	case *BinaryOp:
		result["op"] = n.Op.String()
		result["left"] = NodeToMap(n.Left)
		result["right"] = NodeToMap(n.Right)

	case *Comparison:
		result["op"] = n.Op.String()
		result["left"] = NodeToMap(n.Left)
		result["right"] = NodeToMap(n.Right)

	case *Call:
		args := make([]any, len(n.Args))
		for i, arg := range n.Args {
			args[i] = NodeToMap(arg)
		}

		result["callee"] = n.Callee
		result["args"] = args

	case *Let:
		result["name"] = n.Name
		result["value"] = NodeToMap(n.Value)
		result["body"] = NodeToMap(n.Body)

	case *Lambda:
		result["name"] = n.Name
		result["params"] = paramsToList(n.Params)
		result["value"] = NodeToMap(n.Value)
		result["body"] = NodeToMap(n.Body)

	case *Conditional:
		result["cond"] = NodeToMap(n.Cond)
		result["then"] = NodeToMap(n.Then)
		result["else"] = NodeToMap(n.Else)

	case *FunctionDef:
		result["name"] = n.Name
		result["params"] = paramsToList(n.Params)
		result["body"] = NodeToMap(n.Body)
	}

	return result
}

func paramsToList(params []string) []any {
	list := make([]any, len(params))
	for i, name := range params {
		list[i] = name
	}

	return list
}
