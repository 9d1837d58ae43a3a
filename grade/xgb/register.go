// register.go wires the XGBoost backend into package grade's registration
// variables. This init() runs when any package imports grade/xgb; the CLI
// imports it, tests in package grade run without it.
package xgb

import "github.com/nutricart/nutrigrade/grade"

func init() {
	grade.OpenBoosterFunc = openBooster
	grade.ReadBoosterFunc = readBooster
}

func openBooster(path string) (grade.Booster, error) {
	b, err := Open(path)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func readBooster(data []byte) (grade.Booster, error) {
	b, err := Read(data)
	if err != nil {
		return nil, err
	}
	return b, nil
}
