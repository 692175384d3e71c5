/*
 * qm_test.go, part of gorate.
 *
 *
 * Copyright 2026 The gorate authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package qm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	rate "github.com/rmera/gorate"
	"gonum.org/v1/gonum/mat"
)

const waterXYZ = `3
water
O    0.000000    0.000000    0.117300
H    0.000000    0.757200   -0.469200
H    0.000000   -0.757200   -0.469200
`

const cadmiumXYZ = `1
Cd
Cd   0.0   0.0   0.0`

func writeFile(Te *testing.T, name, content string) string {
	Te.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		Te.Fatal(err)
	}
	return name
}

func TestXYZ(Te *testing.T) {
	dir := Te.TempDir()
	mol, err := ReadXYZ(writeFile(Te, filepath.Join(dir, "water.xyz"), waterXYZ))
	if err != nil {
		Te.Fatal(err)
	}
	if mol.Len() != 3 || mol.Symbols[1] != "H" || mol.Coords.At(1, 1) != 0.7572 || mol.Multi != 1 {
		Te.Errorf("wrong molecule read: %v %v", mol.Symbols, mol.Coords)
	}
	//no newline at the end
	cd, err := ReadXYZ(writeFile(Te, filepath.Join(dir, "cd.xyz"), cadmiumXYZ))
	if err != nil {
		Te.Fatal(err)
	}
	if cd.Len() != 1 || cd.Symbols[0] != "Cd" {
		Te.Errorf("wrong atom read: %v", cd.Symbols)
	}
	mol.Charge = -1
	mol.Multi = 2
	out := filepath.Join(dir, "water2.xyz")
	if err := WriteXYZ(out, mol); err != nil {
		Te.Fatal(err)
	}
	mol2, err := ReadXYZ(out)
	if err != nil {
		Te.Fatal(err)
	}
	if !mat.EqualApprox(mol.Coords, mol2.Coords, 1e-6) {
		Te.Errorf("coordinates changed after writing: %v %v", mol.Coords, mol2.Coords)
	}
	if _, err := ReadXYZ(writeFile(Te, filepath.Join(dir, "bad.xyz"), "3\n\nO 0 0 0\n")); err == nil {
		Te.Error("a truncated file should give an error")
	}
	if err := WriteXYZ(out, &Molecule{Symbols: []string{"H"}, Coords: mat.NewDense(2, 3, nil), Multi: 1}); err == nil {
		Te.Error("inconsistent molecule should not be written")
	}
}

func cdComplex() *Molecule {
	return &Molecule{
		Symbols: []string{"Cd", "O", "H", "H"},
		Coords:  mat.NewDense(4, 3, []float64{0, 0, 0, 0, 0, 2.3, 0, 0.76, 2.9, 0, -0.76, 2.9}),
		Charge:  2,
		Multi:   1,
	}
}

func TestOrcaInput(Te *testing.T) {
	dir := Te.TempDir()
	calc := new(Calc)
	calc.SetDefaults()
	calc.Dielectric = 80
	calc.MetalBasis = "def2-TZVP"
	calc.MetalElements = []string{"Cd", "Zn"}
	calc.TS = true
	orca := NewOrcaHandle()
	orca.SetnCPU(8)
	orca.SetMemory(4000)
	orca.SetName("ts")
	orca.SetWorkDir(dir)
	if err := orca.BuildInput(cdComplex(), calc); err != nil {
		Te.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "ts.inp"))
	if err != nil {
		Te.Fatal(err)
	}
	inp := string(b)
	for _, v := range []string{
		"! RKS B3LYP def2-SVP D3BJ TightSCF OptTS Freq\n",
		"%pal nprocs 8",
		"%maxcore 500\n",
		"%cpcm epsilon 80.00",
		"newgto Cd \"def2-TZVP\" end",
		"Calc_Hess true",
		"Temp 298.15",
		"* xyz 2 1\n",
	} {
		if !strings.Contains(inp, v) {
			Te.Errorf("input doesn't contain %q:\n%s", v, inp)
		}
	}
	if strings.Contains(inp, "newgto Zn") {
		Te.Errorf("basis given for an absent element:\n%s", inp)
	}
	//A single atom with two unpaired electrons is not optimized.
	atom := &Molecule{Symbols: []string{"Cd"}, Coords: mat.NewDense(1, 3, nil), Charge: 0, Multi: 3}
	calc.TS = false
	calc.Dispersion = "nodisp"
	orca.SetName("cd")
	if err := orca.BuildInput(atom, calc); err != nil {
		Te.Fatal(err)
	}
	b, _ = os.ReadFile(filepath.Join(dir, "cd.inp"))
	if !strings.HasPrefix(string(b), "! UKS B3LYP def2-SVP TightSCF Freq\n") {
		Te.Errorf("wrong main line for a triplet atom:\n%s", string(b))
	}
}

const orcaOutput = `
                                 *****************
                                 * O   R   C   A *
                                 *****************
FINAL SINGLE POINT ENERGY      -150.210000000000
FINAL SINGLE POINT ENERGY      -150.234567891234
-----------------------
VIBRATIONAL FREQUENCIES
-----------------------
   0:         0.00 cm**-1
   6:      -312.45 cm**-1 ***imaginary mode***
   7:       120.33 cm**-1
Final Gibbs free energy         ...   -150.201234567890 Eh
                             ****ORCA TERMINATED NORMALLY****
TOTAL RUN TIME: 0 days 1 hours 2 minutes 3 seconds 4 msec
`

func TestOrcaThermo(Te *testing.T) {
	dir := Te.TempDir()
	orca := NewOrcaHandle()
	orca.SetName("ts")
	orca.SetWorkDir(dir)
	writeFile(Te, orca.OutputFile(), orcaOutput)
	th, err := orca.Thermo()
	if err != nil {
		Te.Fatal(err)
	}
	if th.E0 != -150.234567891234 || th.G != -150.201234567890 || th.NImag != 1 {
		Te.Errorf("wrong values parsed %+v", th)
	}
	//An output without the normal termination is a failure
	writeFile(Te, orca.OutputFile(), strings.Replace(orcaOutput, "ORCA TERMINATED NORMALLY", "", 1))
	_, err = orca.Thermo()
	var e *Error
	if !errors.As(err, &e) || e.Code() != Orca || e.InputName() != "ts" {
		Te.Errorf("expected an ORCA error, got %v", err)
	}
	orca.SetName("nothere")
	if _, err := orca.Thermo(); err == nil {
		Te.Error("missing output should give an error")
	}
}

func TestXTBInput(Te *testing.T) {
	dir := Te.TempDir()
	calc := new(Calc)
	calc.SetDefaults()
	calc.Method = "gfn1"
	calc.Dielectric = 80
	xtb := NewXTBHandle()
	xtb.SetnCPU(4)
	xtb.SetName("complex")
	xtb.SetWorkDir(dir)
	if err := xtb.BuildInput(cdComplex(), calc); err != nil {
		Te.Fatal(err)
	}
	opts := strings.Join(xtb.Options(), " ")
	want := "complex.xyz --ohess --chrg 2 --uhf 0 -P 4 --gfn 1 --alpb h2o --input complex.inp"
	if opts != want {
		Te.Errorf("options: %q, want %q", opts, want)
	}
	if _, err := ReadXYZ(filepath.Join(dir, "complex.xyz")); err != nil {
		Te.Error(err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "complex.inp"))
	if !strings.Contains(string(b), "temp=298.15") {
		Te.Errorf("wrong xcontrol file %s", string(b))
	}
	//transition states get only a hessian, and B3LYP turns into GFN2
	calc.TS = true
	calc.Method = "B3LYP"
	if err := xtb.BuildInput(cdComplex(), calc); err != nil {
		Te.Fatal(err)
	}
	opts = strings.Join(xtb.Options(), " ")
	if !strings.Contains(opts, " --hess ") || !strings.Contains(opts, "--gfn 2") {
		Te.Errorf("wrong options for a transition state %q", opts)
	}
}

const xtbOutput = `
   ...................................................
   :                      SUMMARY                    :
   ...................................................
   :  # frequencies                          12      :
   :  # imaginary freq.                       0      :
   ...................................................
           -------------------------------------------------
          | TOTAL ENERGY               -5.070544765106 Eh   |
          | TOTAL ENTHALPY             -5.045000000000 Eh   |
          | TOTAL FREE ENERGY          -5.066543210000 Eh   |
          | GRADIENT NORM               0.000123456789 Eh/α |
           -------------------------------------------------
 normal termination of xtb
`

func TestXTBThermo(Te *testing.T) {
	dir := Te.TempDir()
	xtb := NewXTBHandle()
	xtb.SetName("water")
	xtb.SetWorkDir(dir)
	writeFile(Te, xtb.OutputFile(), xtbOutput)
	th, err := xtb.Thermo()
	if err != nil {
		Te.Fatal(err)
	}
	if th.E0 != -5.070544765106 || th.G != -5.066543210000 || th.NImag != 0 {
		Te.Errorf("wrong values parsed %+v", th)
	}
	writeFile(Te, xtb.OutputFile(), xtbOutput+"\n abnormal termination of xtb\n")
	if _, err := xtb.Thermo(); err == nil {
		Te.Error("abnormal termination should give an error")
	}
}

func TestConfig(Te *testing.T) {
	C := new(Config)
	C.SetDefaults()
	C.Program = " XTB"
	C.NCPU = 0
	if err := C.Check(); err != nil {
		Te.Fatal(err)
	}
	if C.Program != "xtb" || C.NCPU != 1 {
		Te.Errorf("Check didn't fix the config: %+v", C)
	}
	h, err := NewHandle(C)
	if err != nil {
		Te.Fatal(err)
	}
	if _, ok := h.(*XTBHandle); !ok {
		Te.Errorf("expected an xtb handle, got %T", h)
	}
	C.Program = "gaussian"
	if err := C.Check(); err == nil {
		Te.Error("unknown program should give an error")
	}
}

//fakeHandle pretends to run a program. It writes an output file and returns
//preset results.
type fakeHandle struct {
	name, dir string
	results   map[string]*Thermo
	failRun   map[string]bool
	cancelOn  string
	panicOn   string
	cancel    func()
	built     *Calc
}

func (F *fakeHandle) SetName(name string)  { F.name = name }
func (F *fakeHandle) SetWorkDir(d string)  { F.dir = d }
func (F *fakeHandle) OutputFile() string   { return filepath.Join(F.dir, F.name+".out") }
func (F *fakeHandle) BuildInput(mol *Molecule, Q *Calc) error {
	F.built = Q
	return mol.Corrupted()
}

func (F *fakeHandle) Run(ctx context.Context) error {
	if err := os.WriteFile(F.OutputFile(), []byte("fake output for "+F.name+"\n"), 0o644); err != nil {
		return err
	}
	if F.name == F.cancelOn {
		F.cancel()
		return ctx.Err()
	}
	if F.failRun[F.name] {
		return errors.New("SCF did not converge")
	}
	return nil
}

func (F *fakeHandle) Thermo() (*Thermo, error) {
	if F.name == F.panicOn {
		panic("corrupted output")
	}
	th, ok := F.results[F.name]
	if !ok {
		return nil, newError(ErrNoEnergy, "fake", F.name, nil)
	}
	return th, nil
}

func batchSetup(Te *testing.T) ([]Spec, *Config) {
	dir := Te.TempDir()
	water := writeFile(Te, filepath.Join(dir, "water.xyz"), waterXYZ)
	cd := writeFile(Te, filepath.Join(dir, "cd.xyz"), cadmiumXYZ)
	specs := []Spec{
		{Name: "monomer", Geometry: water},
		{Name: "cadmium", Geometry: cd, Charge: 2},
		{Name: "s_product", Geometry: water, Charge: 2},
		{Name: "s_product_ts", Geometry: water, Charge: 2, TS: true},
		{Name: "broken", Geometry: filepath.Join(dir, "nothere.xyz")},
	}
	cfg := new(Config)
	cfg.SetDefaults()
	cfg.WorkDir = filepath.Join(dir, "work")
	cfg.LogDir = filepath.Join(dir, "logs")
	return specs, cfg
}

func TestRunAllPartialFailure(Te *testing.T) {
	specs, cfg := batchSetup(Te)
	results := map[string]*Thermo{
		"monomer":      {E0: -100.01, G: -100.0},
		"cadmium":      {E0: -50.02, G: -50.0},
		"s_product_ts": {E0: -150.035, G: -149.99, NImag: 1},
	}
	factory := func(*Config) (Handle, error) {
		return &fakeHandle{results: results, failRun: map[string]bool{"s_product": true}}, nil
	}
	calc := new(Calc)
	calc.SetDefaults()
	res := RunAll(context.Background(), specs, calc, cfg, WithHandleFactory(factory))
	if len(res.Outcomes) != len(specs) {
		Te.Fatalf("expected %d outcomes, got %d", len(specs), len(res.Outcomes))
	}
	fails := res.Failures()
	if len(fails) != 2 || fails[0].Name != "s_product" || fails[1].Name != "broken" {
		Te.Errorf("unexpected failures %+v", fails)
	}
	T := res.Table()
	if len(T) != 3 {
		Te.Errorf("expected 3 records, got %v", T.Names())
	}
	if g, ok := T.Lookup("cadmium", rate.FieldG); !ok || g != -50.0 {
		Te.Errorf("wrong G for cadmium: %v %v", g, ok)
	}
	ts, ok := res.Outcome("s_product_ts")
	if !ok || !ts.OK() || !ts.Record.TS {
		Te.Errorf("wrong transition state outcome %+v", ts)
	}
	if calc.TS {
		Te.Error("RunAll modified the given settings")
	}
	//the failed run still leaves its output in the log directory
	fail, _ := res.Outcome("s_product")
	if fail.Log == "" {
		Te.Error("no log kept for the failed species")
	} else if _, err := os.Stat(fail.Log); err != nil {
		Te.Error(err)
	}
	if !strings.HasPrefix(filepath.Base(fail.Log), "s_product-") || !strings.HasSuffix(fail.Log, ".log") {
		Te.Errorf("wrong log name %s", fail.Log)
	}
	if res.Finished.Before(res.Started) {
		Te.Error("batch finished before it started")
	}
}

func TestRunAllBadGeometry(Te *testing.T) {
	dir := Te.TempDir()
	huge := writeFile(Te, filepath.Join(dir, "huge.xyz"), "100000000000000\n\nO 0 0 0\n")
	water := writeFile(Te, filepath.Join(dir, "water.xyz"), waterXYZ)
	specs := []Spec{
		{Name: "huge", Geometry: huge},
		{Name: "crash", Geometry: water},
		{Name: "monomer", Geometry: water},
	}
	cfg := new(Config)
	cfg.SetDefaults()
	cfg.WorkDir = filepath.Join(dir, "work")
	cfg.LogDir = filepath.Join(dir, "logs")
	results := map[string]*Thermo{"monomer": {E0: -100.01, G: -100.0}, "crash": {E0: -1, G: -1}}
	factory := func(*Config) (Handle, error) {
		return &fakeHandle{results: results, panicOn: "crash"}, nil
	}
	res := RunAll(context.Background(), specs, nil, cfg, WithHandleFactory(factory))
	if len(res.Outcomes) != 3 {
		Te.Fatalf("expected 3 outcomes, got %d", len(res.Outcomes))
	}
	if res.Outcomes[0].OK() || res.Outcomes[1].OK() {
		Te.Errorf("huge and crash should fail: %+v", res.Outcomes[:2])
	}
	if !strings.Contains(res.Outcomes[1].Err.Error(), "panic") {
		Te.Errorf("unexpected error for crash: %v", res.Outcomes[1].Err)
	}
	if !res.Outcomes[2].OK() {
		Te.Errorf("monomer should still be computed: %v", res.Outcomes[2].Err)
	}
}

func TestRunAllCancel(Te *testing.T) {
	specs, cfg := batchSetup(Te)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := map[string]*Thermo{"monomer": {E0: -100.01, G: -100.0}}
	factory := func(*Config) (Handle, error) {
		return &fakeHandle{results: results, cancelOn: "cadmium", cancel: cancel}, nil
	}
	res := RunAll(ctx, specs, nil, cfg, WithHandleFactory(factory))
	if !res.Outcomes[0].OK() {
		Te.Errorf("the first species should succeed: %v", res.Outcomes[0].Err)
	}
	for _, o := range res.Outcomes[1:] {
		if !errors.Is(o.Err, context.Canceled) {
			Te.Errorf("species %s: expected cancellation, got %v", o.Name, o.Err)
		}
	}
}

func TestRunAllSkip(Te *testing.T) {
	specs, cfg := batchSetup(Te)
	specs = append(specs, Spec{Name: "monomer", Geometry: specs[0].Geometry})
	var computed []string
	factory := func(*Config) (Handle, error) {
		return &fakeHandle{results: map[string]*Thermo{"monomer": {G: -1, E0: -1}}}, nil
	}
	skip := func(name string) (*rate.Record, bool) {
		computed = append(computed, name)
		if name == "cadmium" {
			return rate.NewRecord("cd", -50.0, -50.02, false), true
		}
		return nil, false
	}
	res := RunAll(context.Background(), specs, nil, cfg, WithHandleFactory(factory), WithSkip(skip))
	cd, _ := res.Outcome("cadmium")
	if !cd.OK() || !cd.Reused || *cd.Record.G != -50.0 {
		Te.Errorf("cadmium should be reused: %+v", cd)
	}
	last := res.Outcomes[len(res.Outcomes)-1]
	if last.OK() {
		Te.Error("a repeated species should fail")
	}
	if len(computed) != len(specs)-1 {
		Te.Errorf("skip called for %v", computed)
	}
}

//TestRunAllXTB runs the batch with a script that pretends to be xtb.
func TestRunAllXTB(Te *testing.T) {
	if runtime.GOOS == "windows" {
		Te.Skip("needs a POSIX shell")
	}
	specs, cfg := batchSetup(Te)
	script := filepath.Join(Te.TempDir(), "fakextb")
	writeFile(Te, script, "#!/bin/sh\ncat <<'EOF'\n"+xtbOutput+"EOF\n")
	if err := os.Chmod(script, 0o755); err != nil {
		Te.Fatal(err)
	}
	cfg.Program = "xtb"
	cfg.Command = script
	cfg.NCPU = 1
	res := RunAll(context.Background(), specs[:2], nil, cfg)
	for _, o := range res.Outcomes {
		if !o.OK() {
			Te.Errorf("species %s failed: %v", o.Name, o.Err)
			continue
		}
		if *o.Record.G != -5.066543210000 || *o.Record.E0 != -5.070544765106 {
			Te.Errorf("wrong record for %s: %v %v", o.Name, *o.Record.G, *o.Record.E0)
		}
	}
}

func TestBatchTableDuplicate(Te *testing.T) {
	B := &BatchResult{Outcomes: []Outcome{
		{Name: "cadmium", Record: rate.NewRecord("cadmium", -50.0, -50.02, false)},
		{Name: "cadmium", Record: rate.NewRecord("cadmium", -60.0, -60.02, false)},
	}}
	T := B.Table()
	if len(T) != 1 {
		Te.Fatalf("expected one record, got %v", T.Names())
	}
	if g, _ := T.Lookup("cadmium", rate.FieldG); g != -50.0 {
		Te.Errorf("the first record should be kept, got G=%v", g)
	}
}
