// token emite un JWT firmado con JWT_SECRET para probar la API.
//
// Uso: go run ./cmd/token --role cajero --user caja-1
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/jhoicas/Farmacia-api/pkg/config"
	"github.com/jhoicas/Farmacia-api/pkg/jwt"
)

func main() {
	role := pflag.String("role", jwt.RoleAdmin, "admin | farmaceutico | cajero")
	user := pflag.String("user", "admin", "identificador del usuario (claim user_id)")
	minutes := pflag.Int("minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION)")
	pflag.Parse()

	switch *role {
	case jwt.RoleAdmin, jwt.RoleFarmaceutico, jwt.RoleCajero:
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
