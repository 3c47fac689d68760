package simulator

// dosFileNames feeds the status line while clusters move. Period-correct
// system files, applications and games from a well-worn early-90s disk.
var dosFileNames = []string{
	"IO.SYS", "MSDOS.SYS", "COMMAND.COM", "AUTOEXEC.BAT", "CONFIG.SYS",
	"EDIT.COM", "QBASIC.EXE", "FDISK.EXE", "FORMAT.COM", "CHKDSK.EXE",
	"MEM.EXE", "ATTRIB.EXE", "DEFRAG.EXE", "SCANDISK.EXE", "HIMEM.SYS",
	"EMM386.EXE", "SMARTDRV.EXE", "MOUSE.COM", "DOSSHELL.EXE", "XCOPY.EXE",
	"WINDOWS\\WIN.COM", "WINDOWS\\SYSTEM.INI", "WINDOWS\\WIN.INI",
	"WINDOWS\\SYSTEM\\GDI.EXE", "WINDOWS\\SYSTEM\\USER.EXE", "WINDOWS\\SYSTEM\\KRNL386.EXE",
	"WINDOWS\\PROGMAN.EXE", "WINDOWS\\SOL.EXE", "WINDOWS\\WINMINE.EXE", "WINDOWS\\CLOCK.EXE",
	"WINDOWS\\SYSTEM\\VGA.DRV", "WINDOWS\\SYSTEM\\COMM.DRV", "WINDOWS\\SYSTEM\\MMSOUND.DRV",
	"WINDOWS\\WRITE.EXE", "WINDOWS\\NOTEPAD.EXE", "WINDOWS\\REGEDIT.EXE",
	"DBASE\\DBASE.EXE", "DBASE\\DBASE.RES", "DBASE\\SQLHOME\\SQL.EXE",
	"DBASE\\SAMPLES\\CLIENTS.DBF", "DBASE\\SAMPLES\\ORDERS.DBF", "DBASE\\SAMPLES\\ITEMS.NDX",
	"DBASE\\TUTORIAL\\TUTOR.DBF",
	"DOOM\\DOOM.EXE", "DOOM\\DOOM.WAD", "DOOM\\SETUP.EXE",
	"DUKE3D\\DUKE3D.EXE", "DUKE3D\\DUKE.RTS",
	"CIV\\CIV.EXE", "CIV\\MAP.GIF",
}
