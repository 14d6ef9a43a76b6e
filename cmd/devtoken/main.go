// Command devtoken imprime un JWT firmado con JWT_SECRET para pruebas locales.
//
//	devtoken -user 00000000-0000-0000-0000-000000000001 -role admin
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/jwt"
)

func main() {
	userID := flag.String("user", "00000000-0000-0000-0000-000000000001", "user_id del token")
	role := flag.String("role", jwt.RoleAdmin, "rol: admin | bodeguero")
	minutes := flag.Int("exp", 0, "minutos de vigencia (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	exp := *minutes
	if exp <= 0 {
		exp = cfg.JWT.Expiration
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generar token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
