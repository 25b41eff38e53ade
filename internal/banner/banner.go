package banner

import "fmt"

const Version = "1.0.0"

func Print(process string) {
	banner := `
   ____  __      __  ___      __       __
  / __ \/ /_  __/  |/  /___ _/ /______/ /_
 / / / / / / / / /|_/ / __ ` + "`" + `/ __/ ___/ __ \
/ /_/ / / /_/ / /  / / /_/ / /_/ /__/ / / /
\____/_/\__, /_/  /_/\__,_/\__/\___/_/ /_/
       /____/  v%s - %s
    `
	fmt.Printf(banner, Version, process)
	fmt.Println("\n------------------------------------------------")
}
