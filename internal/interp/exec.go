package interp

import "github.com/arbor-lang/arbor/internal/ast"

// exec runs s, implementing spec.md §4.7's per-variant statement
// semantics. It returns a non-nil error only for an unrecoverable runtime
// fault (assertion failure, out-of-bounds access); break/continue/return
// instead set the corresponding signal and return nil, to be observed by
// the nearest enclosing loop, switch or subroutine call.
func (in *Interp) exec(s *ast.Stmt) error {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case ast.BlockStmtKind:
		b := s.S.(*ast.BlockStmtData)
		for _, c := range b.Stmts {
			if err := in.exec(c); err != nil {
				return err
			}
			if in.breaking || in.continuing || in.returning {
				return nil
			}
		}
		return nil

	case ast.VarDeclStmtKind:
		v := s.S.(*ast.VarDeclStmtData).Var
		val, err := in.eval(v.Init)
		if err != nil {
			return err
		}
		in.setVar(v, Copy(val))
		return nil

	case ast.AssignStmtKind:
		a := s.S.(*ast.AssignStmtData)
		rv, err := in.eval(a.RHS)
		if err != nil {
			return err
		}
		return in.assign(a.LHS, Copy(rv))

	case ast.ExprStmtKind:
		_, err := in.eval(s.S.(*ast.ExprStmtData).X)
		return err

	case ast.ForCStmtKind:
		f := s.S.(*ast.ForCStmtData)
		if err := in.exec(f.Init); err != nil {
			return err
		}
		for {
			if f.Cond != nil {
				cond, err := in.eval(f.Cond)
				if err != nil {
					return err
				}
				if !cond.V.(bool) {
					break
				}
			}
			if err := in.exec(f.Body); err != nil {
				return err
			}
			if in.returning {
				return nil
			}
			if in.breaking {
				in.breaking = false
				break
			}
			in.continuing = false
			if err := in.exec(f.Incr); err != nil {
				return err
			}
		}
		return nil

	case ast.WhileStmtKind:
		w := s.S.(*ast.WhileStmtData)
		for {
			cond, err := in.eval(w.Cond)
			if err != nil {
				return err
			}
			if !cond.V.(bool) {
				break
			}
			if err := in.exec(w.Body); err != nil {
				return err
			}
			if in.returning {
				return nil
			}
			if in.breaking {
				in.breaking = false
				break
			}
			in.continuing = false
		}
		return nil

	case ast.IfStmtKind:
		i := s.S.(*ast.IfStmtData)
		cond, err := in.eval(i.Cond)
		if err != nil {
			return err
		}
		if cond.V.(bool) {
			return in.exec(i.Then)
		}
		return in.exec(i.Else)

	case ast.SwitchStmtKind:
		return in.execSwitch(s.S.(*ast.SwitchStmtData))

	case ast.MatchStmtKind:
		return in.execMatch(s.S.(*ast.MatchStmtData))

	case ast.ReturnStmtKind:
		r := s.S.(*ast.ReturnStmtData)
		if r.Value != nil {
			v, err := in.eval(r.Value)
			if err != nil {
				return err
			}
			in.retVal = Copy(v)
		}
		in.returning = true
		return nil

	case ast.BreakStmtKind:
		in.breaking = true
		return nil

	case ast.ContinueStmtKind:
		in.continuing = true
		return nil

	case ast.PrintStmtKind:
		p := s.S.(*ast.PrintStmtData)
		for _, a := range p.Args {
			v, err := in.eval(a)
			if err != nil {
				return err
			}
			Render(in.Stdout, in.Reg, v)
		}
		return nil

	case ast.AssertStmtKind:
		a := s.S.(*ast.AssertStmtData)
		v, err := in.eval(a.Cond)
		if err != nil {
			return err
		}
		if !v.V.(bool) {
			return rtErrf(s.Pos, "assertion failed: %s", a.SourceText)
		}
		return nil

	default:
		return nil
	}
}

// execSwitch implements the linear case search plus flat-statement-list
// resume described in spec.md §4.7: the matched (or default) case's
// label is the index into Stmts execution resumes from, falling through
// statement by statement until a break, return, or the end of the list.
func (in *Interp) execSwitch(sw *ast.SwitchStmtData) error {
	scrut, err := in.eval(sw.Scrutinee)
	if err != nil {
		return err
	}
	label := sw.DefaultLabel
	for i, cv := range sw.CaseValues {
		cvv, err := in.eval(cv)
		if err != nil {
			return err
		}
		if valuesEqual(scrut, cvv) {
			label = sw.CaseLabels[i]
			break
		}
	}
	if label < 0 {
		return nil
	}
	for i := label; i < len(sw.Stmts); i++ {
		if err := in.exec(sw.Stmts[i]); err != nil {
			return err
		}
		if in.returning || in.continuing {
			return nil
		}
		if in.breaking {
			in.breaking = false
			return nil
		}
	}
	return nil
}

// execMatch implements the first-matching-option union match of
// spec.md §4.7, binding the case variable to the unwrapped payload. A
// `break` in a case body ends the match and is cleared here, so it does
// not propagate to an enclosing loop or switch, mirroring
// original_source/src/AstInterpreter.cpp.
func (in *Interp) execMatch(m *ast.MatchStmtData) error {
	scrut, err := in.eval(m.Scrutinee)
	if err != nil {
		return err
	}
	uv := scrut.V.(*UnionValue)
	for i, opt := range m.OptionTypes {
		if !sameUnionOption(in.Reg, opt, uv, m.Scrutinee.Type) {
			continue
		}
		if i < len(m.CaseVars) && m.CaseVars[i] != nil {
			in.setVar(m.CaseVars[i], Copy(uv.Payload))
		}
		err := in.exec(m.CaseBodies[i])
		in.breaking = false
		return err
	}
	if m.DefaultBody != nil {
		err := in.exec(m.DefaultBody)
		in.breaking = false
		return err
	}
	return nil
}
