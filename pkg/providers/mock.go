package providers

import "fmt"

func mockOutput(req Request) string {
	if req.Params.JSONMode() {
		return fmt.Sprintf(`{"model":%q,"echo":%q}`, req.Model, req.Prompt)
	}
	return fmt.Sprintf("[mock:%s] %s", req.Model, req.Prompt)
}
