package ast

import "encoding/gob"

// Register the concrete node types so a Program can travel through
// encoding/gob as the precompiled artifact payload.
func init() {
	gob.Register(&NumberLiteral{})
	gob.Register(&StringLiteral{})
	gob.Register(&BoolLiteral{})
	gob.Register(&NullLiteral{})
	gob.Register(&Identifier{})
	gob.Register(&PropertyExpr{})
	gob.Register(&IndexExpr{})
	gob.Register(&ArrayLiteral{})
	gob.Register(&ObjectLiteral{})
	gob.Register(&BinaryExpr{})
	gob.Register(&UnaryExpr{})
	gob.Register(&TypeTestExpr{})
	gob.Register(&CallExpr{})
	gob.Register(&LambdaExpr{})
	gob.Register(&VarDeclStmt{})
	gob.Register(&AssignStmt{})
	gob.Register(&IncDecStmt{})
	gob.Register(&IfStmt{})
	gob.Register(&SwitchStmt{})
	gob.Register(&WhileStmt{})
	gob.Register(&ForStmt{})
	gob.Register(&ForEachStmt{})
	gob.Register(&ReturnStmt{})
	gob.Register(&FailStmt{})
	gob.Register(&BreakStmt{})
	gob.Register(&ContinueStmt{})
	gob.Register(&ExprStmt{})
}
